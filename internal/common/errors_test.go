package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds_MatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", NewValidationError("All fields must be filled!"), ErrValidation},
		{"conflict", NewConflictError("Username is already in use!"), ErrConflict},
		{"not found", NewNotFoundError("Incorrect username!"), ErrorNotFound},
		{"auth", NewAuthError("Incorrect password!"), ErrorUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			assert.Equal(t, tt.err.Error(), Message(wrapped))
		})
	}
}

func TestMessage_FallsBackToGeneric(t *testing.T) {
	assert.Equal(t, GenericMessage, Message(errors.New("db error: connection refused")))
	assert.Equal(t, GenericMessage, Message(&Error{Kind: ErrValidation}))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(NewAuthError("Incorrect password!")))
	assert.True(t, IsAuthError(fmt.Errorf("verify: %w", ErrTokenExpired)))
	assert.True(t, IsAuthError(ErrInvalidToken))
	assert.False(t, IsAuthError(NewValidationError("x")))
	assert.False(t, IsAuthError(nil))
}
