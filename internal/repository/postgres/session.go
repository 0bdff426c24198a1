package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avekarev/identity/internal/domain"
	apperrors "github.com/avekarev/identity/pkg/errors"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL.
// Refresh tokens are stored hashed; user_id is the primary key so each
// account holds at most one session.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a PostgreSQL-backed session repository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save stores the session for the user, replacing any existing one.
func (r *SessionRepository) Save(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error {
	query := `
		INSERT INTO sessions (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query, userID, hashToken(refreshToken), expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// Consume atomically removes the session matching the refresh token and
// returns it. A second call with the same token finds nothing.
func (r *SessionRepository) Consume(ctx context.Context, refreshToken string) (*domain.Session, error) {
	query := `
		DELETE FROM sessions
		WHERE token_hash = $1
		RETURNING user_id, token_hash, expires_at, created_at`

	var s domain.Session

	err := r.db.QueryRow(ctx, query, hashToken(refreshToken)).Scan(
		&s.UserID,
		&s.TokenHash,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("consume session: %w", err)
	}

	return &s, nil
}

// DeleteByToken removes the session matching the refresh token. Deleting a
// token with no session is not an error.
func (r *SessionRepository) DeleteByToken(ctx context.Context, refreshToken string) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`

	_, err := r.db.Exec(ctx, query, hashToken(refreshToken))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// hashToken derives the storage key for a refresh token. Tokens never hit
// the database in cleartext.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
