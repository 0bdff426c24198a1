package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_SensitiveFieldsNeverMarshalled(t *testing.T) {
	u := User{
		ID:             "u-1",
		Email:          "a@x.com",
		PasswordHash:   "bcrypt-secret",
		ActivationLink: "link-secret",
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "bcrypt-secret")
	assert.NotContains(t, string(raw), "link-secret")
}

func TestUser_Profile(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	u := User{
		ID:           "u-1",
		Email:        "a@x.com",
		PasswordHash: "hash",
		DisplayName:  "Alice",
		Location:     "Berlin",
		IsActivated:  true,
		NotifyEmail:  true,
		CreatedAt:    created,
	}

	p := u.Profile()

	assert.Equal(t, "u-1", p.ID)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "Alice", p.DisplayName)
	assert.Equal(t, "Berlin", p.Location)
	assert.True(t, p.IsActivated)
	assert.True(t, p.NotifyEmail)
	assert.False(t, p.NotifyPush)
	assert.Equal(t, created, p.CreatedAt)
}

func TestRegistrationCode_Expired(t *testing.T) {
	now := time.Now().UTC()
	code := RegistrationCode{Email: "a@x.com", Code: "123456", ExpiresAt: now.Add(time.Minute)}

	assert.False(t, code.Expired(now))
	assert.True(t, code.Expired(now.Add(2*time.Minute)))
}

func TestRegistrationCode_ViewOmitsOTP(t *testing.T) {
	code := RegistrationCode{Email: "a@x.com", Code: "123456", Confirmed: true}

	raw, err := json.Marshal(code.View())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "123456")
	assert.Contains(t, string(raw), "a@x.com")
}
