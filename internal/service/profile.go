package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/avekarev/identity/internal/domain"
	"github.com/avekarev/identity/internal/event"
	"github.com/avekarev/identity/internal/repository"
	apperrors "github.com/avekarev/identity/pkg/errors"
)

// ProfileService implements profile reads and writes for authenticated users.
type ProfileService struct {
	userRepo repository.UserRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	userRepo repository.UserRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		producer: producer,
		logger:   logger,
	}
}

// UpdateProfileInput holds the full replacement profile. Every field is
// written; there are no partial updates.
type UpdateProfileInput struct {
	Email       string
	DisplayName string
	Location    string
	NotifyEmail bool
	NotifyPush  bool
}

// UpdatePasswordInput holds the parameters for a password change.
type UpdatePasswordInput struct {
	OldPassword        string
	NewPassword        string
	NewPasswordConfirm string
}

// GetProfile retrieves the profile view of a user.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile replaces the user's profile fields wholesale and returns
// the updated profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.Profile, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	user.Email = input.Email
	user.DisplayName = input.DisplayName
	user.Location = input.Location
	user.NotifyEmail = input.NotifyEmail
	user.NotifyPush = input.NotifyPush

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	// Publish user updated event (non-blocking on failure).
	if err := s.producer.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user profile updated",
		slog.String("user_id", user.ID),
	)

	profile := user.Profile()
	return &profile, nil
}

// UpdatePassword changes the user's password. The confirmation must match
// the new password, the old password must verify, and the new password must
// differ from the old one; nothing is written until all three hold.
func (s *ProfileService) UpdatePassword(ctx context.Context, userID string, input UpdatePasswordInput) (*domain.Profile, error) {
	if input.OldPassword == "" {
		return nil, apperrors.InvalidInput("old password is required")
	}
	if input.NewPassword == "" {
		return nil, apperrors.InvalidInput("new password is required")
	}

	if input.NewPassword != input.NewPasswordConfirm {
		return nil, apperrors.PasswordMismatch()
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for password change: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	if input.NewPassword == input.OldPassword {
		return nil, apperrors.NoOpChange()
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user password: %w", err)
	}

	// Publish password changed event (non-blocking on failure).
	if err := s.producer.PublishUserPasswordChanged(ctx, user.ID, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_changed event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", user.ID),
	)

	profile := user.Profile()
	return &profile, nil
}
