package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stock_forecast/internal/feature/auth/domain"
	"stock_forecast/internal/feature/auth/domain/entity"
)

// mockUserRepository はUserRepositoryのモック実装です。
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

// mockJWTGenerator はJWTGeneratorのモック実装です。
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

func newTestUsecase(repo UserRepository, gen JWTGenerator) *AuthUsecase {
	u := NewAuthUsecase(repo, gen)
	u.cost = bcrypt.MinCost
	return u
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		email     string
		password  string
		createErr error
		wantErr   error
	}{
		{name: "success", email: "User@Example.com ", password: "password123"},
		{name: "password too short", email: "a@example.com", password: "short", wantErr: domain.ErrWeakPassword},
		{name: "password too long", email: "a@example.com", password: strings.Repeat("x", 73), wantErr: domain.ErrWeakPassword},
		{name: "duplicate email", email: "a@example.com", password: "password123", createErr: domain.ErrUserAlreadyExists, wantErr: domain.ErrUserAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var created *entity.User
			repo := &mockUserRepository{CreateFunc: func(ctx context.Context, user *entity.User) error {
				created = user
				return tt.createErr
			}}
			uc := newTestUsecase(repo, &mockJWTGenerator{})

			err := uc.Signup(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, created)
			assert.Equal(t, "user@example.com", created.Email)
			assert.NotEqual(t, tt.password, created.Password)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(tt.password)))
		})
	}
}

func TestAuthUsecase_Login(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &entity.User{ID: 7, Email: "user@example.com", Password: string(hash)}

	dbDown := errors.New("db down")
	tokenErr := errors.New("signing failed")

	tests := []struct {
		name      string
		email     string
		password  string
		findErr   error
		tokenErr  error
		wantToken string
		wantErrIs error
	}{
		{name: "success with case-insensitive email", email: "USER@example.com", password: "correctpassword", wantToken: "token-7"},
		{name: "wrong password", email: "user@example.com", password: "wrongpassword", wantErrIs: domain.ErrInvalidCredentials},
		{name: "unknown user", email: "nobody@example.com", password: "correctpassword", findErr: domain.ErrUserNotFound, wantErrIs: domain.ErrInvalidCredentials},
		{name: "repository failure", email: "user@example.com", password: "correctpassword", findErr: dbDown, wantErrIs: dbDown},
		{name: "token failure", email: "user@example.com", password: "correctpassword", tokenErr: tokenErr, wantErrIs: tokenErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockUserRepository{FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				assert.Equal(t, strings.ToLower(tt.email), email)
				if tt.findErr != nil {
					return nil, tt.findErr
				}
				return stored, nil
			}}
			gen := &mockJWTGenerator{GenerateTokenFunc: func(userID uint, email string) (string, error) {
				if tt.tokenErr != nil {
					return "", tt.tokenErr
				}
				assert.Equal(t, uint(7), userID)
				return "token-7", nil
			}}
			uc := newTestUsecase(repo, gen)

			token, err := uc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
