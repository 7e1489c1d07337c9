package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vinoddotcom/ecom-learn-backend/internal/auth"
	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	apperrors "github.com/vinoddotcom/ecom-learn-backend/pkg/errors"
)

func newUserService(userRepo *mockUserRepository, tokenRepo *mockRefreshTokenRepository) *UserService {
	return NewUserService(userRepo, tokenRepo, newTestJWTManager(), newTestEventProducer(), newTestLogger())
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserService(userRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
	tokenRepo.On("Store", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil)

	user, tokens, err := svc.Register(ctx, RegisterInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "SecurePass123",
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NotEqual(t, "SecurePass123", user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserService(userRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "jane@example.com"))

	user, tokens, err := svc.Register(ctx, RegisterInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "SecurePass123",
	})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	cases := []string{"short1", "allletters", "123456789"}
	for _, password := range cases {
		user, tokens, err := svc.Register(context.Background(), RegisterInput{
			Name:     "Jane",
			Email:    "jane@example.com",
			Password: password,
		})

		assert.Nil(t, user, password)
		assert.Nil(t, tokens, password)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, password)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	_, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "SecurePass123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = svc.Register(context.Background(), RegisterInput{Name: "Jane", Password: "SecurePass123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserService(userRepo, tokenRepo)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "u1",
		Name:         "Jane",
		Email:        "jane@example.com",
		PasswordHash: hashForTest("SecurePass123"),
		Role:         domain.RoleCustomer,
	}
	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(stored, nil)
	tokenRepo.On("Store", ctx, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil)

	user, tokens, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "SecurePass123"})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserService(userRepo, tokenRepo)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "u1",
		Email:        "jane@example.com",
		PasswordHash: hashForTest("SecurePass123"),
	}
	userRepo.On("GetByEmail", ctx, "jane@example.com").Return(stored, nil)

	user, tokens, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong"})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "nobody@example.com").
		Return(nil, apperrors.NotFound("user", "nobody@example.com"))

	_, _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever1"})

	// Unknown email and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// --- RefreshToken Tests ---

func TestRefreshToken_RotatesToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserService(userRepo, tokenRepo)
	ctx := context.Background()

	refresh, err := newTestJWTManager().GenerateRefreshToken("u1")
	require.NoError(t, err)
	hash := auth.HashToken(refresh)

	stored := &domain.User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: domain.RoleCustomer}
	tokenRepo.On("UserID", ctx, hash).Return("u1", nil)
	tokenRepo.On("Revoke", ctx, hash).Return(nil)
	userRepo.On("GetByID", ctx, "u1").Return(stored, nil)
	tokenRepo.On("Store", ctx, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil)

	tokens, err := svc.RefreshToken(ctx, refresh)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, refresh, tokens.RefreshToken)
	tokenRepo.AssertCalled(t, "Revoke", ctx, hash)
}

func TestRefreshToken_UnknownToken(t *testing.T) {
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserService(new(mockUserRepository), tokenRepo)
	ctx := context.Background()

	refresh, err := newTestJWTManager().GenerateRefreshToken("u1")
	require.NoError(t, err)

	tokenRepo.On("UserID", ctx, auth.HashToken(refresh)).
		Return("", apperrors.Unauthorized("invalid or expired refresh token"))

	tokens, err := svc.RefreshToken(ctx, refresh)

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc := newUserService(new(mockUserRepository), new(mockRefreshTokenRepository))

	tokens, err := svc.RefreshToken(context.Background(), "not-a-jwt")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// --- Profile Tests ---

func TestUpdateProfile_ChangesName(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	stored := &domain.User{ID: "u1", Name: "Jane", Email: "jane@example.com"}
	userRepo.On("GetByID", ctx, "u1").Return(stored, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	name := "Jane Smith"
	user, err := svc.UpdateProfile(ctx, "u1", UpdateProfileInput{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", user.Name)
}

func TestUpdateProfile_EmptyNameRejected(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	stored := &domain.User{ID: "u1", Name: "Jane"}
	userRepo.On("GetByID", ctx, "u1").Return(stored, nil)

	name := ""
	user, err := svc.UpdateProfile(ctx, "u1", UpdateProfileInput{Name: &name})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- Logout Tests ---

func TestLogout_RevokesToken(t *testing.T) {
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserService(new(mockUserRepository), tokenRepo)
	ctx := context.Background()

	tokenRepo.On("Revoke", ctx, auth.HashToken("some-token")).Return(nil)

	require.NoError(t, svc.Logout(ctx, "some-token"))
	tokenRepo.AssertExpectations(t)
}
