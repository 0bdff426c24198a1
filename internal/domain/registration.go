package domain

import (
	"time"
)

// RegistrationCode is a one-time passcode that must be confirmed before an
// account may be created for the email. At most one live record exists per
// email; a new issuance overwrites the previous one.
type RegistrationCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Confirmed bool      `json:"confirmed"`
}

// Expired reports whether the code's expiry is in the past at the given
// instant.
func (c *RegistrationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// RegistrationCodeView is the public projection of a RegistrationCode. The
// OTP itself is only ever delivered out of band.
type RegistrationCodeView struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Confirmed bool      `json:"confirmed"`
}

// View returns the public projection of the registration code.
func (c *RegistrationCode) View() RegistrationCodeView {
	return RegistrationCodeView{
		Email:     c.Email,
		ExpiresAt: c.ExpiresAt,
		Confirmed: c.Confirmed,
	}
}
