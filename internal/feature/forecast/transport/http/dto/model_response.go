package dto

import (
	"time"

	"stock_forecast/internal/feature/forecast/domain/entity"
	"stock_forecast/internal/feature/forecast/usecase"
)

// ModelStatusResponse はGET /stocks/:ticker/model のレスポンスDTOです。
// 未学習の場合はExistsとTicker以外を省略します。
type ModelStatusResponse struct {
	Exists           bool     `json:"exists"`
	Ticker           string   `json:"ticker"`
	LastTrained      string   `json:"lastTrained,omitempty"` // RFC3339
	MAE              *float64 `json:"mae,omitempty"`
	MSE              *float64 `json:"mse,omitempty"`
	RMSE             *float64 `json:"rmse,omitempty"`
	TrainingDuration *int     `json:"trainingDuration,omitempty"` // 秒
	Performance      string   `json:"performance,omitempty"`
}

// TrainResponse はPOST /stocks/:ticker/model のレスポンスDTOです。
type TrainResponse struct {
	Success          bool             `json:"success"`
	Ticker           string           `json:"ticker"`
	MAE              float64          `json:"mae"`
	MSE              float64          `json:"mse"`
	RMSE             float64          `json:"rmse"`
	TrainingDuration int              `json:"trainingDuration"`
	Predictions      []PredictionItem `json:"predictions"`
}

// NotTrained は未学習ティッカーのレスポンスを作ります。
func NotTrained(ticker string) ModelStatusResponse {
	return ModelStatusResponse{Exists: false, Ticker: ticker}
}

// FromMetrics は評価指標をレスポンスに変換します。指標は小数第4位に丸めます。
func FromMetrics(m entity.ModelMetrics) ModelStatusResponse {
	mae, mse, rmse := roundMetric(m.MeanAbsoluteError), roundMetric(m.MeanSquaredError), roundMetric(m.RootMeanSquaredError)
	duration := m.TrainingDurationSeconds
	return ModelStatusResponse{
		Exists:           true,
		Ticker:           m.Ticker,
		LastTrained:      m.LastTrainedAt.UTC().Format(time.RFC3339),
		MAE:              &mae,
		MSE:              &mse,
		RMSE:             &rmse,
		TrainingDuration: &duration,
		Performance:      m.PerformanceLabel(),
	}
}

// FromForecast は生成結果をレスポンスに変換します。
func FromForecast(f entity.Forecast) TrainResponse {
	return TrainResponse{
		Success:          true,
		Ticker:           f.Metrics.Ticker,
		MAE:              roundMetric(f.Metrics.MeanAbsoluteError),
		MSE:              roundMetric(f.Metrics.MeanSquaredError),
		RMSE:             roundMetric(f.Metrics.RootMeanSquaredError),
		TrainingDuration: f.Metrics.TrainingDurationSeconds,
		Predictions:      FromPredictions(f.Predictions),
	}
}

func roundMetric(v float64) float64 { return usecase.RoundMetric(v) }
