// Package handler はinsightフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stock_forecast/internal/api"
	forecastdomain "stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/insight/domain"
	"stock_forecast/internal/feature/insight/domain/entity"
	"stock_forecast/internal/feature/insight/transport/http/dto"
)

// InsightUsecase は予測コメント生成のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type InsightUsecase interface {
	Explain(ctx context.Context, ticker string) (*entity.ForecastInsight, error)
}

// InsightHandler は予測コメントのHTTPリクエストを処理します。
type InsightHandler struct {
	uc InsightUsecase
}

// NewInsightHandler はInsightHandlerの新しいインスタンスを生成します。
func NewInsightHandler(uc InsightUsecase) *InsightHandler {
	return &InsightHandler{uc: uc}
}

// Explain は保存済みの予測に対するAIコメントを返します。
//
// エンドポイント例:
// GET /stocks/TCS.NS/insight
func (h *InsightHandler) Explain(c *gin.Context) {
	ticker, err := api.TickerParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: forecastdomain.ErrInvalidTicker.Error()})
		return
	}

	insight, err := h.uc.Explain(c.Request.Context(), ticker)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.InsightResponse{
			Ticker:      insight.Ticker,
			Summary:     insight.Summary,
			GeneratedAt: insight.GeneratedAt.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, forecastdomain.ErrInvalidTicker):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNoPredictions):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No predictions available. Train the model first."})
	case errors.Is(err, domain.ErrAnalyzerUnavailable):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "Insight is not available"})
	default:
		zap.L().Error("failed to generate insight", zap.String("ticker", ticker), zap.Error(err))
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "Failed to generate insight"})
	}
}
