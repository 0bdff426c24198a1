package domain

import (
	"time"
)

// User represents a registered account in the system.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	DisplayName    string    `json:"display_name"`
	Location       string    `json:"location,omitempty"`
	IsActivated    bool      `json:"is_activated"`
	ActivationLink string    `json:"-"`
	NotifyEmail    bool      `json:"notify_email"`
	NotifyPush     bool      `json:"notify_push"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Profile is the public projection of a User returned to clients. It never
// carries the password hash or the activation link.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Location    string    `json:"location,omitempty"`
	IsActivated bool      `json:"is_activated"`
	NotifyEmail bool      `json:"notify_email"`
	NotifyPush  bool      `json:"notify_push"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Location:    u.Location,
		IsActivated: u.IsActivated,
		NotifyEmail: u.NotifyEmail,
		NotifyPush:  u.NotifyPush,
		CreatedAt:   u.CreatedAt,
	}
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
