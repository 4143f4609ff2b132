// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stock_forecast/internal/api"
	"stock_forecast/internal/feature/auth/domain"
	"stock_forecast/internal/feature/auth/transport/http/dto"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
//   - バリデーションエラー、弱いパスワードは400
//   - メール重複は409（詳細は返さない）
//   - 成功時は201
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("signup validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		zap.L().Info("user signup successful", zap.String("email", req.Email), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusCreated, api.MessageResponse{Message: "ok"})
	case errors.Is(err, domain.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUserAlreadyExists):
		// ユーザー列挙を防ぐため、重複の事実は返さない
		zap.L().Warn("signup failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "signup failed"})
	default:
		zap.L().Error("signup failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "signup failed"})
	}
}

// Login はユーザーログインAPIエンドポイントを処理します。
//   - バリデーションエラーは400
//   - 認証失敗は401
//   - 成功時はJWTトークン付きで200
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("login validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			zap.L().Warn("login failed", zap.String("remote_addr", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
			return
		}
		zap.L().Error("login failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "login failed"})
		return
	}
	zap.L().Info("user login successful", zap.String("email", req.Email), zap.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}
