package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_SentinelsAndStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		sentinel error
		status   int
		code     string
	}{
		{"already registered", AlreadyRegistered("a@x.com"), ErrAlreadyRegistered, http.StatusConflict, "ALREADY_REGISTERED"},
		{"not confirmed", RegistrationNotConfirmed("a@x.com"), ErrNotConfirmed, http.StatusForbidden, "REGISTRATION_NOT_CONFIRMED"},
		{"invalid code", InvalidCode("123456"), ErrInvalidCode, http.StatusBadRequest, "INVALID_CODE"},
		{"expired code", ExpiredCode("123456"), ErrExpiredCode, http.StatusBadRequest, "EXPIRED_CODE"},
		{"cooldown", CooldownActive("a@x.com", 42), ErrCooldownActive, http.StatusTooManyRequests, "COOLDOWN_ACTIVE"},
		{"invalid credentials", InvalidCredentials(), ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"password mismatch", PasswordMismatch(), ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
		{"no-op change", NoOpChange(), ErrNoOpChange, http.StatusBadRequest, "NO_OP_CHANGE"},
		{"unauthorized", Unauthorized(), ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", NotFound("user", "u-1"), ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid activation", InvalidActivationLink("deadbeef"), ErrInvalidActivation, http.StatusBadRequest, "INVALID_ACTIVATION_LINK"},
		{"invalid input", InvalidInput("email is required"), ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestCooldownActive_CarriesSecondsLeft(t *testing.T) {
	err := CooldownActive("a@x.com", 37)
	assert.Equal(t, int64(37), err.SecondsLeft)
	assert.Equal(t, "email", err.Field)
	assert.Equal(t, "a@x.com", err.Value)
}

func TestExpiredVsInvalidCode_Flag(t *testing.T) {
	assert.True(t, ExpiredCode("111111").IsExpired)
	assert.False(t, InvalidCode("111111").IsExpired)
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("consume session: %w", ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestAppError_UnwrapAndMessage(t *testing.T) {
	appErr := Internal(errors.New("db down"))
	require.ErrorContains(t, appErr, "INTERNAL_ERROR")

	var target *AppError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", appErr), &target))
	assert.Equal(t, "INTERNAL_ERROR", target.Code)
}

func TestMessage_UnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, Message("INTERNAL_ERROR"), Message("NO_SUCH_CODE"))
}
