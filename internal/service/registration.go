package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/avekarev/identity/internal/domain"
	"github.com/avekarev/identity/internal/mail"
	"github.com/avekarev/identity/internal/repository"
	apperrors "github.com/avekarev/identity/pkg/errors"
)

// codeLength is the number of digits in a registration code.
const codeLength = 6

// RegistrationService gates sign-up behind one-time email codes. A code is
// valid for a fixed window after issue; the same window doubles as the
// re-issue cooldown.
type RegistrationService struct {
	userRepo repository.UserRepository
	codeRepo repository.RegistrationCodeRepository
	sender   mail.Sender
	codeTTL  time.Duration
	logger   *slog.Logger

	now func() time.Time
}

// NewRegistrationService creates a new registration service.
func NewRegistrationService(
	userRepo repository.UserRepository,
	codeRepo repository.RegistrationCodeRepository,
	sender mail.Sender,
	codeTTL time.Duration,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		userRepo: userRepo,
		codeRepo: codeRepo,
		sender:   sender,
		codeTTL:  codeTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// IssueCode generates a fresh registration code for the email and mails it.
// While a previous code for the same email is still within its window, the
// request is rejected with the seconds remaining.
func (s *RegistrationService) IssueCode(ctx context.Context, email string) (*domain.RegistrationCodeView, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.AlreadyRegistered(email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	now := s.now()

	existing, err := s.codeRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get registration code: %w", err)
	}
	if existing != nil && !existing.Expired(now) {
		secondsLeft := int64(existing.ExpiresAt.Sub(now).Seconds()) + 1
		return nil, apperrors.CooldownActive(email, secondsLeft)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate registration code: %w", err)
	}

	record := &domain.RegistrationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.codeTTL),
		Confirmed: false,
	}

	if err := s.codeRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("store registration code: %w", err)
	}

	// Delivery is fire-and-forget: the code is already stored, so a mail
	// hiccup must not block the flow. The client can retry after the window.
	if err := s.sender.SendRegistrationCode(ctx, email, code); err != nil {
		s.logger.ErrorContext(ctx, "failed to send registration code",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "registration code issued",
		slog.String("email", email),
	)

	view := record.View()
	return &view, nil
}

// VerifyCode checks a submitted code against the one issued for the email.
// A wrong or unknown code and an expired one fail differently so the client
// can tell the user to retype or to request a new code.
func (s *RegistrationService) VerifyCode(ctx context.Context, email, code string) (*domain.RegistrationCodeView, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if code == "" {
		return nil, apperrors.InvalidInput("code is required")
	}

	record, err := s.codeRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidCode(code)
		}
		return nil, fmt.Errorf("get registration code: %w", err)
	}

	if record.Code != code {
		return nil, apperrors.InvalidCode(code)
	}

	if record.Expired(s.now()) {
		return nil, apperrors.ExpiredCode(code)
	}

	record.Confirmed = true
	if err := s.codeRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("confirm registration code: %w", err)
	}

	s.logger.InfoContext(ctx, "registration code confirmed",
		slog.String("email", email),
	)

	view := record.View()
	return &view, nil
}

// generateCode returns a uniformly random numeric code of codeLength digits.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	return fmt.Sprintf("%0*d", codeLength, n), nil
}
