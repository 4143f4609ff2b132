// Package entity defines the domain models for the forecast feature.
package entity

import "time"

// ModelMetrics holds the evaluation scores of the (simulated) model trained for a ticker.
// There is at most one record per ticker; a retrain replaces it.
type ModelMetrics struct {
	Ticker                  string    // Uppercase ticker, unique key
	MeanAbsoluteError       float64   // MAE
	MeanSquaredError        float64   // MSE
	RootMeanSquaredError    float64   // RMSE, sqrt(MSE) at generation time
	ModelArtifactPath       string    // Where the model artifact would live
	TrainingDurationSeconds int       // Reported training time
	LastTrainedAt           time.Time // Generation timestamp
}

// PerformanceLabel はMAEに基づく評価ラベルを返します。
func (m ModelMetrics) PerformanceLabel() string {
	switch {
	case m.MeanAbsoluteError < 30:
		return "Excellent"
	case m.MeanAbsoluteError < 50:
		return "Good"
	default:
		return "Fair"
	}
}

// PricePrediction is one forecast trading day for a ticker.
// High is never below max(Open, Close) and Low never above min(Open, Close).
type PricePrediction struct {
	Ticker string
	Date   time.Time // Calendar day (UTC midnight)
	Open   float64
	High   float64
	Low    float64
	Close  float64
}

// Forecast is the output of one generation: metrics plus the daily predictions.
type Forecast struct {
	Metrics     ModelMetrics
	Predictions []PricePrediction
}
