package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avekarev/identity/internal/domain"
	apperrors "github.com/avekarev/identity/pkg/errors"
)

func confirmedCode(email string) *domain.RegistrationCode {
	return &domain.RegistrationCode{
		Email:     email,
		Code:      "482915",
		ExpiresAt: time.Now().UTC().Add(30 * time.Second),
		Confirmed: true,
	}
}

// --- SignUp Tests ---

func TestSignUp_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	codeRepo := new(mockRegistrationCodeRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, codeRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, apperrors.ErrNotFound)
	codeRepo.On("GetByEmail", ctx, "john@example.com").Return(confirmedCode("john@example.com"), nil)

	var created *domain.User
	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.User)
		}).
		Return(nil)
	codeRepo.On("DeleteByEmail", ctx, "john@example.com").Return(nil)
	sessionRepo.On("Save", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	input := SignUpInput{
		Email:       "john@example.com",
		Password:    "SecurePass123",
		DisplayName: "John",
		Location:    "Lisbon",
	}

	user, tokens, err := svc.SignUp(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, "John", user.DisplayName)
	assert.True(t, user.IsActivated)
	assert.NotEmpty(t, user.ActivationLink)
	assert.True(t, user.NotifyEmail)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// Stored hash verifies against the plaintext and the plaintext itself is gone.
	require.NotNil(t, created)
	assert.NotEqual(t, "SecurePass123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("SecurePass123")))

	userRepo.AssertExpectations(t)
	codeRepo.AssertExpectations(t)
	sessionRepo.AssertExpectations(t)
}

func TestSignUp_AlreadyRegistered(t *testing.T) {
	userRepo := new(mockUserRepository)
	codeRepo := new(mockRegistrationCodeRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, codeRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "john@example.com").Return(&domain.User{ID: "u-1", Email: "john@example.com"}, nil)

	user, tokens, err := svc.SignUp(ctx, SignUpInput{Email: "john@example.com", Password: "SecurePass123"})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyRegistered))
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignUp_CodeNotConfirmed(t *testing.T) {
	userRepo := new(mockUserRepository)
	codeRepo := new(mockRegistrationCodeRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, codeRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, apperrors.ErrNotFound)
	code := confirmedCode("john@example.com")
	code.Confirmed = false
	codeRepo.On("GetByEmail", ctx, "john@example.com").Return(code, nil)

	user, tokens, err := svc.SignUp(ctx, SignUpInput{Email: "john@example.com", Password: "SecurePass123"})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotConfirmed))
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignUp_NoCodeIssued(t *testing.T) {
	userRepo := new(mockUserRepository)
	codeRepo := new(mockRegistrationCodeRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, codeRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, apperrors.ErrNotFound)
	codeRepo.On("GetByEmail", ctx, "john@example.com").Return(nil, apperrors.ErrNotFound)

	user, tokens, err := svc.SignUp(ctx, SignUpInput{Email: "john@example.com", Password: "SecurePass123"})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotConfirmed))
}

// --- SignIn Tests ---

func TestSignIn_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	codeRepo := new(mockRegistrationCodeRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, codeRepo, sessionRepo)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "u-1",
		Email:        "john@example.com",
		PasswordHash: hashForTest(t, "SecurePass123"),
	}
	userRepo.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)
	sessionRepo.On("Save", ctx, "u-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	user, tokens, err := svc.SignIn(ctx, "john@example.com", "SecurePass123")

	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	sessionRepo.AssertExpectations(t)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, new(mockRegistrationCodeRepository), sessionRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	user, tokens, err := svc.SignIn(ctx, "nobody@example.com", "whatever")

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignIn_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, new(mockRegistrationCodeRepository), sessionRepo)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "u-1",
		Email:        "john@example.com",
		PasswordHash: hashForTest(t, "SecurePass123"),
	}
	userRepo.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

	user, tokens, err := svc.SignIn(ctx, "john@example.com", "WrongPass456")

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Refresh Tests ---

func TestRefresh_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, new(mockRegistrationCodeRepository), sessionRepo)
	ctx := context.Background()

	// A real refresh token so validation after consumption passes.
	_, refreshToken, err := newTestTokenManager().IssuePair("u-1", "john@example.com")
	require.NoError(t, err)

	sessionRepo.On("Consume", ctx, refreshToken).Return(&domain.Session{
		UserID:    "u-1",
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}, nil)
	userRepo.On("GetByID", ctx, "u-1").Return(&domain.User{ID: "u-1", Email: "john@example.com"}, nil)
	sessionRepo.On("Save", ctx, "u-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	user, tokens, err := svc.Refresh(ctx, refreshToken)

	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, refreshToken, tokens.RefreshToken)
	sessionRepo.AssertExpectations(t)
}

func TestRefresh_EmptyToken(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), new(mockRegistrationCodeRepository), sessionRepo)

	user, tokens, err := svc.Refresh(context.Background(), "")

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	sessionRepo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
}

func TestRefresh_UnknownToken(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), new(mockRegistrationCodeRepository), sessionRepo)
	ctx := context.Background()

	sessionRepo.On("Consume", ctx, "unknown-token").Return(nil, apperrors.ErrNotFound)

	user, tokens, err := svc.Refresh(ctx, "unknown-token")

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// A token that fails signature validation is consumed first, so the session
// it pointed at is gone even though no new pair is issued.
func TestRefresh_MalformedTokenStillConsumed(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), new(mockRegistrationCodeRepository), sessionRepo)
	ctx := context.Background()

	sessionRepo.On("Consume", ctx, "not-a-jwt").Return(&domain.Session{
		UserID:    "u-1",
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}, nil)

	user, tokens, err := svc.Refresh(ctx, "not-a-jwt")

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	sessionRepo.AssertCalled(t, "Consume", ctx, "not-a-jwt")
}

func TestRefresh_ExpiredSession(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), new(mockRegistrationCodeRepository), sessionRepo)
	ctx := context.Background()

	_, refreshToken, err := newTestTokenManager().IssuePair("u-1", "john@example.com")
	require.NoError(t, err)

	sessionRepo.On("Consume", ctx, refreshToken).Return(&domain.Session{
		UserID:    "u-1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}, nil)

	user, tokens, err := svc.Refresh(ctx, refreshToken)

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// --- Logout Tests ---

func TestLogout_Success(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), new(mockRegistrationCodeRepository), sessionRepo)
	ctx := context.Background()

	sessionRepo.On("DeleteByToken", ctx, "some-token").Return(nil)

	err := svc.Logout(ctx, "some-token")

	assert.NoError(t, err)
	sessionRepo.AssertExpectations(t)
}

func TestLogout_EmptyToken(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), new(mockRegistrationCodeRepository), sessionRepo)

	err := svc.Logout(context.Background(), "")

	assert.NoError(t, err)
	sessionRepo.AssertNotCalled(t, "DeleteByToken", mock.Anything, mock.Anything)
}

// --- Activate Tests ---

func TestActivate_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockRegistrationCodeRepository), new(mockSessionRepository))
	ctx := context.Background()

	stored := &domain.User{ID: "u-1", Email: "john@example.com", ActivationLink: "link-1", IsActivated: false}
	userRepo.On("GetByActivationLink", ctx, "link-1").Return(stored, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	err := svc.Activate(ctx, "link-1")

	require.NoError(t, err)
	assert.True(t, stored.IsActivated)
	userRepo.AssertExpectations(t)
}

func TestActivate_AlreadyActivated(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockRegistrationCodeRepository), new(mockSessionRepository))
	ctx := context.Background()

	stored := &domain.User{ID: "u-1", ActivationLink: "link-1", IsActivated: true}
	userRepo.On("GetByActivationLink", ctx, "link-1").Return(stored, nil)

	err := svc.Activate(ctx, "link-1")

	assert.NoError(t, err)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestActivate_UnknownLink(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockRegistrationCodeRepository), new(mockSessionRepository))
	ctx := context.Background()

	userRepo.On("GetByActivationLink", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	err := svc.Activate(ctx, "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidActivation))
}
