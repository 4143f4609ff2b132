package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stock_forecast/internal/feature/auth/domain"
)

// mockAuthUsecase はAuthUsecaseインターフェースのモック実装です。
type mockAuthUsecase struct {
	SignupFunc func(ctx context.Context, email, password string) error
	LoginFunc  func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthUsecase) Signup(ctx context.Context, email, password string) error {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password)
	}
	return nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return "", domain.ErrInvalidCredentials
}

func TestAuthHandler_Signup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		signupErr      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success",
			body:           `{"email":"user@example.com","password":"password123"}`,
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"message":"ok"}`,
		},
		{
			name:           "error: invalid json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "error: invalid email",
			body:           `{"email":"not-an-email","password":"password123"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "error: weak password",
			body:           `{"email":"user@example.com","password":"short"}`,
			signupErr:      fmt.Errorf("%w: must be at least 8 characters long", domain.ErrWeakPassword),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"password is too weak: must be at least 8 characters long"}`,
		},
		{
			name:           "error: duplicate email",
			body:           `{"email":"user@example.com","password":"password123"}`,
			signupErr:      domain.ErrUserAlreadyExists,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"signup failed"}`,
		},
		{
			name:           "error: repository failure",
			body:           `{"email":"user@example.com","password":"password123"}`,
			signupErr:      errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"signup failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{SignupFunc: func(ctx context.Context, email, password string) error {
				return tt.signupErr
			}})
			r := gin.New()
			r.POST("/signup", h.Signup)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		mockLogin      func(ctx context.Context, email, password string) (string, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"email":"user@example.com","password":"password123"}`,
			mockLogin: func(ctx context.Context, email, password string) (string, error) {
				assert.Equal(t, "user@example.com", email)
				assert.Equal(t, "password123", password)
				return "jwt-token", nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"token":"jwt-token"}`,
		},
		{
			name:           "error: missing password",
			body:           `{"email":"user@example.com"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name: "error: invalid credentials",
			body: `{"email":"user@example.com","password":"wrong"}`,
			mockLogin: func(ctx context.Context, email, password string) (string, error) {
				return "", domain.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"invalid email or password"}`,
		},
		{
			name: "error: internal failure",
			body: `{"email":"user@example.com","password":"password123"}`,
			mockLogin: func(ctx context.Context, email, password string) (string, error) {
				return "", errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"login failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{LoginFunc: tt.mockLogin})
			r := gin.New()
			r.POST("/login", h.Login)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
