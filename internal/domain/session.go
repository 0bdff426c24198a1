package domain

import (
	"time"
)

// Session associates a stored refresh token with an account. Each account
// holds at most one live session; issuing a new token pair overwrites the
// previous session, and consuming a refresh token destroys it.
type Session struct {
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
