package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the identity error taxonomy. Services wrap
// or return these so callers can branch with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrNotConfirmed       = errors.New("registration not confirmed")
	ErrInvalidCode        = errors.New("invalid registration code")
	ErrExpiredCode        = errors.New("expired registration code")
	ErrCooldownActive     = errors.New("registration code cooldown active")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("password confirmation mismatch")
	ErrNoOpChange         = errors.New("no-op change")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidActivation  = errors.New("invalid activation link")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
)

// messages is the catalog of user-facing message strings keyed by error
// code, keeping the taxonomy decoupled from any one display language.
var messages = map[string]string{
	"ALREADY_REGISTERED":         "an account with this email already exists",
	"REGISTRATION_NOT_CONFIRMED": "registration code has not been confirmed for this email",
	"INVALID_CODE":               "registration code does not match",
	"EXPIRED_CODE":               "registration code has expired",
	"COOLDOWN_ACTIVE":            "a registration code was already sent, wait before requesting another",
	"INVALID_CREDENTIALS":        "invalid email or password",
	"PASSWORD_MISMATCH":          "new password and confirmation do not match",
	"NO_OP_CHANGE":               "new password must differ from the current password",
	"UNAUTHORIZED":               "unauthorized",
	"NOT_FOUND":                  "resource not found",
	"INVALID_ACTIVATION_LINK":    "activation link is invalid",
	"INVALID_INPUT":              "invalid input",
	"INTERNAL_ERROR":             "an internal error occurred",
}

// Message returns the catalog message for the given error code, falling
// back to the internal-error message for unknown codes.
func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages["INTERNAL_ERROR"]
}

// AppError represents a structured, client-actionable application error
// with HTTP status mapping and kind-specific metadata.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`

	// Field and Value identify the offending input, when known.
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`

	// SecondsLeft is set for COOLDOWN_ACTIVE errors.
	SecondsLeft int64 `json:"seconds_left,omitempty"`
	// IsExpired distinguishes EXPIRED_CODE from INVALID_CODE so clients
	// can offer "resend" instead of "retype".
	IsExpired bool `json:"is_expired,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AlreadyRegistered creates a 409 error for a duplicate account.
func AlreadyRegistered(email string) *AppError {
	return &AppError{
		Code:    "ALREADY_REGISTERED",
		Message: Message("ALREADY_REGISTERED"),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyRegistered,
		Field:   "email",
		Value:   email,
	}
}

// RegistrationNotConfirmed creates a 403 error for signup without a
// confirmed registration code.
func RegistrationNotConfirmed(email string) *AppError {
	return &AppError{
		Code:    "REGISTRATION_NOT_CONFIRMED",
		Message: Message("REGISTRATION_NOT_CONFIRMED"),
		Status:  http.StatusForbidden,
		Err:     ErrNotConfirmed,
		Field:   "email",
		Value:   email,
	}
}

// InvalidCode creates a 400 error for a registration code that does not
// match the stored (email, code) pair.
func InvalidCode(code string) *AppError {
	return &AppError{
		Code:    "INVALID_CODE",
		Message: Message("INVALID_CODE"),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidCode,
		Field:   "code",
		Value:   code,
	}
}

// ExpiredCode creates a 400 error for a matching but time-expired
// registration code.
func ExpiredCode(code string) *AppError {
	return &AppError{
		Code:      "EXPIRED_CODE",
		Message:   Message("EXPIRED_CODE"),
		Status:    http.StatusBadRequest,
		Err:       ErrExpiredCode,
		Field:     "code",
		Value:     code,
		IsExpired: true,
	}
}

// CooldownActive creates a 429 error reporting the seconds remaining
// before a new registration code may be issued.
func CooldownActive(email string, secondsLeft int64) *AppError {
	return &AppError{
		Code:        "COOLDOWN_ACTIVE",
		Message:     Message("COOLDOWN_ACTIVE"),
		Status:      http.StatusTooManyRequests,
		Err:         ErrCooldownActive,
		Field:       "email",
		Value:       email,
		SecondsLeft: secondsLeft,
	}
}

// InvalidCredentials creates a 401 error for a failed password comparison.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: Message("INVALID_CREDENTIALS"),
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidCredentials,
		Field:   "password",
	}
}

// PasswordMismatch creates a 400 error for a password confirmation that
// does not match the new password.
func PasswordMismatch() *AppError {
	return &AppError{
		Code:    "PASSWORD_MISMATCH",
		Message: Message("PASSWORD_MISMATCH"),
		Status:  http.StatusBadRequest,
		Err:     ErrPasswordMismatch,
		Field:   "confirm_new_password",
	}
}

// NoOpChange creates a 400 error for a new password equal to the current one.
func NoOpChange() *AppError {
	return &AppError{
		Code:    "NO_OP_CHANGE",
		Message: Message("NO_OP_CHANGE"),
		Status:  http.StatusBadRequest,
		Err:     ErrNoOpChange,
		Field:   "new_password",
	}
}

// Unauthorized creates a 401 error. It is deliberately coarse: every
// refresh/logout failure mode maps here so callers cannot tell which
// check failed.
func Unauthorized() *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: Message("UNAUTHORIZED"),
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
		Field:   "id",
		Value:   id,
	}
}

// InvalidActivationLink creates a 400 error for an unknown activation link.
func InvalidActivationLink(link string) *AppError {
	return &AppError{
		Code:    "INVALID_ACTIVATION_LINK",
		Message: Message("INVALID_ACTIVATION_LINK"),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidActivation,
		Field:   "link",
		Value:   link,
	}
}

// InvalidInput creates a 400 error with a specific message.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: Message("INTERNAL_ERROR"),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrExpiredCode), errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrNoOpChange), errors.Is(err, ErrInvalidActivation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, ErrCooldownActive):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
