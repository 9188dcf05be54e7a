// Package common defines shared constants and sentinel errors used across
// profilekeeper layers. Callers should use errors.Is to match the kinds and
// errors.As to recover the user-facing message of an *Error.
package common

import "errors"

var (
	// Error kinds surfaced to API callers.
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrorNotFound     = errors.New("not found")
	ErrorUnauthorized = errors.New("unauthorized")

	// Unclassified failures collapse to this kind.
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// GenericMessage is returned to clients for failures that carry no
// user-facing message of their own.
const GenericMessage = "There was an error!"

// Error pairs an error kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the kind so errors.Is(err, common.ErrConflict) works.
func (e *Error) Unwrap() error { return e.Kind }

func NewValidationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func NewConflictError(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func NewNotFoundError(msg string) error { return &Error{Kind: ErrorNotFound, Message: msg} }

func NewAuthError(msg string) error { return &Error{Kind: ErrorUnauthorized, Message: msg} }

// IsAuthError reports whether err belongs to the authentication family,
// including token verification failures.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrorUnauthorized) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired)
}

// Message returns the client-facing message carried by err, or
// GenericMessage when err is not an *Error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return GenericMessage
}
