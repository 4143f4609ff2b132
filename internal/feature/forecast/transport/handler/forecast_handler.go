// Package handler はforecastフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stock_forecast/internal/api"
	"stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
	"stock_forecast/internal/feature/forecast/transport/http/dto"
)

// ForecastUsecase は予測の生成と参照のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ForecastUsecase interface {
	Train(ctx context.Context, ticker string) (*entity.Forecast, error)
	GetModel(ctx context.Context, ticker string) (*entity.ModelMetrics, error)
	GetPredictions(ctx context.Context, ticker string) ([]entity.PricePrediction, error)
}

// ChartRenderer は予測チャートをPNGに描画します。
type ChartRenderer interface {
	RenderPNG(ticker string, predictions []entity.PricePrediction) ([]byte, error)
}

// ForecastHandler はモデル学習と予測参照のHTTPリクエストを処理します。
type ForecastHandler struct {
	uc    ForecastUsecase
	chart ChartRenderer
}

// NewForecastHandler は新しい ForecastHandler を作成します。chartはnilでも構いません。
func NewForecastHandler(uc ForecastUsecase, chart ChartRenderer) *ForecastHandler {
	return &ForecastHandler{uc: uc, chart: chart}
}

// GetModel は学習済みモデルの評価指標を返します。
//
// エンドポイント例:
// GET /stocks/TCS.NS/model
func (h *ForecastHandler) GetModel(c *gin.Context) {
	ticker, ok := h.ticker(c)
	if !ok {
		return
	}

	m, err := h.uc.GetModel(c.Request.Context(), ticker)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.FromMetrics(*m))
	case errors.Is(err, domain.ErrModelNotFound):
		normalized, _ := domain.NormalizeTicker(ticker)
		c.JSON(http.StatusOK, dto.NotTrained(normalized))
	case errors.Is(err, domain.ErrInvalidTicker):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		zap.L().Error("failed to check model", zap.String("ticker", ticker), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to check model"})
	}
}

// Train はモデル学習（シミュレーション）を実行し、7日分の予測を返します。
//
// エンドポイント例:
// POST /stocks/TCS.NS/model
func (h *ForecastHandler) Train(c *gin.Context) {
	ticker, ok := h.ticker(c)
	if !ok {
		return
	}

	f, err := h.uc.Train(c.Request.Context(), ticker)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTicker) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		zap.L().Error("failed to train model", zap.String("ticker", ticker), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to train model"})
		return
	}

	zap.L().Info("model trained",
		zap.String("ticker", f.Metrics.Ticker),
		zap.Int("training_duration", f.Metrics.TrainingDurationSeconds),
	)
	c.JSON(http.StatusOK, dto.FromForecast(*f))
}

// GetPredictions は保存済みの予測を日付昇順で返します。
//
// エンドポイント例:
// GET /stocks/TCS.NS/predictions
func (h *ForecastHandler) GetPredictions(c *gin.Context) {
	normalized, ps, ok := h.predictions(c)
	if !ok {
		return
	}

	resp := dto.PredictionsResponse{Ticker: normalized, Predictions: dto.FromPredictions(ps)}
	if len(ps) == 0 {
		resp.Message = dto.NoPredictionsMessage
	}
	c.JSON(http.StatusOK, resp)
}

// Chart は保存済みの予測をPNGチャートとして返します。
//
// エンドポイント例:
// GET /stocks/TCS.NS/predictions/chart.png
func (h *ForecastHandler) Chart(c *gin.Context) {
	if h.chart == nil {
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "chart rendering is not available"})
		return
	}

	normalized, ps, ok := h.predictions(c)
	if !ok {
		return
	}
	if len(ps) == 0 {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: dto.NoPredictionsMessage})
		return
	}

	png, err := h.chart.RenderPNG(normalized, ps)
	if err != nil {
		zap.L().Error("failed to render chart", zap.String("ticker", normalized), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to render chart"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// predictions は予測取得の共通処理です。エラー時はレスポンスを書き込みfalseを返します。
func (h *ForecastHandler) predictions(c *gin.Context) (string, []entity.PricePrediction, bool) {
	ticker, ok := h.ticker(c)
	if !ok {
		return "", nil, false
	}

	ps, err := h.uc.GetPredictions(c.Request.Context(), ticker)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTicker) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return "", nil, false
		}
		zap.L().Error("failed to fetch predictions", zap.String("ticker", ticker), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch predictions"})
		return "", nil, false
	}

	// usecaseは正規化に成功しているのでエラーにはならない
	normalized, _ := domain.NormalizeTicker(ticker)
	return normalized, ps, true
}

func (h *ForecastHandler) ticker(c *gin.Context) (string, bool) {
	ticker, err := api.TickerParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: domain.ErrInvalidTicker.Error()})
		return "", false
	}
	return ticker, true
}
