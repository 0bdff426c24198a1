package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avekarev/identity/internal/auth"
	"github.com/avekarev/identity/internal/domain"
	"github.com/avekarev/identity/internal/event"
	"github.com/avekarev/identity/internal/repository"
	apperrors "github.com/avekarev/identity/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// AuthService implements sign-up, sign-in, token rotation and logout.
type AuthService struct {
	userRepo    repository.UserRepository
	codeRepo    repository.RegistrationCodeRepository
	sessionRepo repository.SessionRepository
	tokens      *auth.TokenManager
	producer    *event.Producer
	logger      *slog.Logger

	now func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	codeRepo repository.RegistrationCodeRepository,
	sessionRepo repository.SessionRepository,
	tokens *auth.TokenManager,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		codeRepo:    codeRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		producer:    producer,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SignUpInput holds the parameters for creating a new account.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
	Location    string
}

// SignUp creates an account for an email whose registration code has been
// confirmed. The confirmed code is consumed so it cannot gate a second
// sign-up.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, nil, apperrors.AlreadyRegistered(input.Email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("check existing user: %w", err)
	}

	record, err := s.codeRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.RegistrationNotConfirmed(input.Email)
		}
		return nil, nil, fmt.Errorf("get registration code: %w", err)
	}
	if !record.Confirmed {
		return nil, nil, apperrors.RegistrationNotConfirmed(input.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:             uuid.New().String(),
		Email:          input.Email,
		PasswordHash:   string(hashedPassword),
		DisplayName:    input.DisplayName,
		Location:       input.Location,
		IsActivated:    true,
		ActivationLink: uuid.New().String(),
		NotifyEmail:    true,
		NotifyPush:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	// Consume the code; losing this delete only shortens the re-issue window.
	if err := s.codeRepo.DeleteByEmail(ctx, input.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete consumed registration code",
			slog.String("email", input.Email),
			slog.String("error", err.Error()),
		)
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// SignIn authenticates a user with email and password, returning tokens.
// Any previous session for the account is replaced.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Refresh rotates a refresh token for a new token pair. The stored session
// is consumed before the token is validated, so a token that fails any
// check is already burned and cannot be retried.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, nil, apperrors.Unauthorized()
	}

	session, err := s.sessionRepo.Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized()
		}
		return nil, nil, fmt.Errorf("consume session: %w", err)
	}

	if _, err := s.tokens.ValidateRefresh(refreshToken); err != nil {
		return nil, nil, apperrors.Unauthorized()
	}

	if s.now().After(session.ExpiresAt) {
		return nil, nil, apperrors.Unauthorized()
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized()
		}
		return nil, nil, fmt.Errorf("get user for refresh: %w", err)
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session: %w", err)
	}

	s.logger.InfoContext(ctx, "session refreshed",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// Logout removes the session matching the refresh token. Logging out with
// an unknown or already-removed token succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out")

	return nil
}

// Activate marks the account behind an activation link as activated.
func (s *AuthService) Activate(ctx context.Context, link string) error {
	if link == "" {
		return apperrors.InvalidActivationLink(link)
	}

	user, err := s.userRepo.GetByActivationLink(ctx, link)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidActivationLink(link)
		}
		return fmt.Errorf("get user by activation link: %w", err)
	}

	if user.IsActivated {
		return nil
	}

	user.IsActivated = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	s.logger.InfoContext(ctx, "user activated",
		slog.String("user_id", user.ID),
	)

	return nil
}

// verifyCredentials looks up the user and checks the password. An unknown
// email and a wrong password fail differently.
func (s *AuthService) verifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", email)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	return user, nil
}

// issueSession creates a token pair and stores the refresh half, replacing
// any session the account already holds.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, refreshToken, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	expiresAt := s.now().Add(s.tokens.RefreshExpiry())
	if err := s.sessionRepo.Save(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
