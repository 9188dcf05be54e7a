// Package validation checks account inputs with go-playground/validator and
// turns the failures into the messages shown to API clients.
package validation

import (
	"errors"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/passwords"
	"github.com/go-playground/validator/v10"
)

const (
	MsgFieldsRequired = "All fields must be filled!"
	MsgInvalidEmail   = "Email is not valid!"
	MsgUsernameLength = "Username must be between 3 and 30 characters!"
	MsgWeakPassword   = "Password is not strong enough!"
)

// SignupInput is a normalized signup request.
type SignupInput struct {
	UserName string `validate:"required,min=3,max=30"`
	Email    string `validate:"required,min=3,max=50,email"`
	Password string `validate:"required,strongpassword"`
}

// LoginInput is a normalized login request.
type LoginInput struct {
	UserName string `validate:"required"`
	Password string `validate:"required"`
}

// PasswordInput is a password change request.
type PasswordInput struct {
	Password    string `validate:"required"`
	NewPassword string `validate:"required,strongpassword"`
}

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("strongpassword", validateStrongPassword)
	return &Validator{validate: v}
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	return passwords.IsStrong(fl.Field().String())
}

// Check validates s and returns a *common.Error of kind ErrValidation
// carrying the most relevant message, or nil.
func (v *Validator) Check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return common.NewValidationError(common.GenericMessage)
	}

	return common.NewValidationError(pickMessage(validationErrors))
}

// Missing fields win over everything else, then the email, username and
// password rules in that order.
func pickMessage(errs validator.ValidationErrors) string {
	best, bestRank := common.GenericMessage, len(messageRank)
	for _, e := range errs {
		msg := messageFor(e)
		if r := rank(msg); r < bestRank {
			best, bestRank = msg, r
		}
	}
	return best
}

var messageRank = []string{
	MsgFieldsRequired,
	MsgInvalidEmail,
	MsgUsernameLength,
	MsgWeakPassword,
}

func rank(msg string) int {
	for i, m := range messageRank {
		if m == msg {
			return i
		}
	}
	return len(messageRank)
}

func messageFor(e validator.FieldError) string {
	if e.Tag() == "required" {
		return MsgFieldsRequired
	}

	switch e.Field() {
	case "Email":
		return MsgInvalidEmail
	case "UserName":
		return MsgUsernameLength
	case "Password", "NewPassword":
		if e.Tag() == "strongpassword" {
			return MsgWeakPassword
		}
	}

	return common.GenericMessage
}
