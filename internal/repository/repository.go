package repository

import (
	"context"
	"time"

	"github.com/avekarev/identity/internal/domain"
)

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByActivationLink retrieves a user by their activation link.
	GetByActivationLink(ctx context.Context, link string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// RegistrationCodeRepository defines the persistence contract for one-time
// registration codes. The store guarantees upsert-by-email is atomic per
// key, so concurrent issuance for one email cannot leave two live codes.
type RegistrationCodeRepository interface {
	// GetByEmail retrieves the current code record for the email.
	GetByEmail(ctx context.Context, email string) (*domain.RegistrationCode, error)

	// Upsert stores the code record, overwriting any previous record for
	// the same email.
	Upsert(ctx context.Context, code *domain.RegistrationCode) error

	// DeleteByEmail removes the code record for the email, if any.
	DeleteByEmail(ctx context.Context, email string) error
}

// SessionRepository defines the persistence contract for refresh-token
// sessions. Storage is keyed per user: saving overwrites any previous
// session for that user, so at most one refresh token per account is ever
// live.
type SessionRepository interface {
	// Save stores the refresh token for the user, replacing any existing
	// session for that user.
	Save(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error

	// Consume atomically finds and removes the session matching the
	// refresh token. Returns the removed session, or ErrNotFound when no
	// exact match exists. Two concurrent calls for the same token cannot
	// both succeed.
	Consume(ctx context.Context, refreshToken string) (*domain.Session, error)

	// DeleteByToken removes the session matching the refresh token.
	// Idempotent: a missing session is not an error.
	DeleteByToken(ctx context.Context, refreshToken string) error
}
