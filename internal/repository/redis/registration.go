package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avekarev/identity/internal/domain"
	apperrors "github.com/avekarev/identity/pkg/errors"
)

const keyPrefix = "regcode:"

// recordTTL is a housekeeping bound, not the code lifetime. Records must
// outlive the verification window so an expired code can still be told
// apart from a code that never existed.
const recordTTL = 24 * time.Hour

// codeRecord is the stored form of a registration code. The domain type
// hides the code from JSON, so persistence uses its own shape.
type codeRecord struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Confirmed bool      `json:"confirmed"`
}

// RegistrationCodeRepository implements repository.RegistrationCodeRepository
// using Redis.
type RegistrationCodeRepository struct {
	client *redis.Client
}

// NewRegistrationCodeRepository creates a new Redis-backed registration code repository.
func NewRegistrationCodeRepository(client *redis.Client) *RegistrationCodeRepository {
	return &RegistrationCodeRepository{client: client}
}

// GetByEmail retrieves the registration code issued for an email address.
func (r *RegistrationCodeRepository) GetByEmail(ctx context.Context, email string) (*domain.RegistrationCode, error) {
	data, err := r.client.Get(ctx, keyPrefix+email).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get registration code: %w", err)
	}

	var rec codeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal registration code: %w", err)
	}

	return &domain.RegistrationCode{
		Email:     rec.Email,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt,
		Confirmed: rec.Confirmed,
	}, nil
}

// Upsert stores the registration code, replacing any previous one for the
// same email.
func (r *RegistrationCodeRepository) Upsert(ctx context.Context, code *domain.RegistrationCode) error {
	rec := codeRecord{
		Email:     code.Email,
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
		Confirmed: code.Confirmed,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal registration code: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+code.Email, data, recordTTL).Err(); err != nil {
		return fmt.Errorf("redis set registration code: %w", err)
	}

	return nil
}

// DeleteByEmail removes the registration code for an email address.
func (r *RegistrationCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, keyPrefix+email).Err(); err != nil {
		return fmt.Errorf("redis del registration code: %w", err)
	}

	return nil
}
