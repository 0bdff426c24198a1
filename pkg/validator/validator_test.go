package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Code     string `validate:"required,len=6,numeric"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(signUpForm{
		Email:    "a@x.com",
		Password: "Secret123",
		Code:     "123456",
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldMessages(t *testing.T) {
	err := Validate(signUpForm{
		Email:    "not-an-email",
		Password: "short",
		Code:     "12ab",
	})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be at least 8 characters", fields["Password"])
	assert.Contains(t, fields, "Code")
	assert.Contains(t, valErr.Error(), "field 'Email'")
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	type form struct {
		Email       string `json:"email" validate:"required,email"`
		DisplayName string `json:"display_name,omitempty" validate:"max=2"`
		Internal    string `json:"-" validate:"required"`
	}

	err := Validate(form{Email: "nope", DisplayName: "too long"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.NotContains(t, fields, "Email")
	assert.Contains(t, fields, "display_name")
	assert.Contains(t, fields, "Internal")
}

func TestValidate_RequiredMissing(t *testing.T) {
	err := Validate(signUpForm{})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "is required", valErr.Fields()["Email"])
}
