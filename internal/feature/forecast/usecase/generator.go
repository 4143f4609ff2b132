package usecase

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"stock_forecast/internal/feature/forecast/domain/entity"
)

const (
	// ForecastDays は1回の生成で作る予測日数です。
	ForecastDays = 7

	minTrainingSeconds = 30
	maxTrainingSeconds = 90

	minMAE, maxMAE = 15.0, 55.0
	minMSE, maxMSE = 500.0, 2500.0

	minBasePrice, maxBasePrice = 500.0, 3500.0

	// 日次の始値変動幅（±2.5%）
	dailyVariation = 0.025
	// 始値に対する終値の追加変動幅（±1%）
	closeVariation = 0.01
	// 高値・安値のヒゲ幅（最大2.5%）
	wickVariation = 0.025
)

// RandomSource は生成に使う乱数源です。*rand.Rand（math/rand/v2）がこれを満たします。
type RandomSource interface {
	// Float64 returns a float in [0.0, 1.0).
	Float64() float64
	// IntN returns an int in [0, n).
	IntN(n int) int
}

// NewRandomSource はシード固定可能なPCG乱数源を返します。
func NewRandomSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator synthesizes model metrics and a multiplicative random walk of daily OHLC prices.
// It is safe for concurrent use; draws from the source are serialized.
type Generator struct {
	mu  sync.Mutex
	rnd RandomSource
	now func() time.Time
}

// NewGenerator creates a Generator. A nil now defaults to time.Now.
func NewGenerator(rnd RandomSource, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rnd, now: now}
}

// Generate produces metrics and ForecastDays predictions for an already-normalized ticker.
// Draw order: duration, MAE, MSE, base price, then per day variation, close noise, high wick, low wick.
func (g *Generator) Generate(ticker string) entity.Forecast {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	duration := minTrainingSeconds + g.rnd.IntN(maxTrainingSeconds-minTrainingSeconds+1)
	mae := g.uniform(minMAE, maxMAE)
	mse := g.uniform(minMSE, maxMSE)

	metrics := entity.ModelMetrics{
		Ticker:                  ticker,
		MeanAbsoluteError:       mae,
		MeanSquaredError:        mse,
		RootMeanSquaredError:    math.Sqrt(mse),
		ModelArtifactPath:       ModelArtifactPath(ticker),
		TrainingDurationSeconds: duration,
		LastTrainedAt:           now,
	}

	utc := now.UTC()
	today := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)

	predictions := make([]entity.PricePrediction, 0, ForecastDays)
	base := g.uniform(minBasePrice, maxBasePrice)
	for day := 1; day <= ForecastDays; day++ {
		variation := g.uniform(-dailyVariation, dailyVariation)
		open := base * (1 + variation)
		cv := variation + g.uniform(-closeVariation, closeVariation)
		closePrice := base * (1 + cv)
		high := math.Max(open, closePrice) * (1 + g.uniform(0, wickVariation))
		low := math.Min(open, closePrice) * (1 - g.uniform(0, wickVariation))

		predictions = append(predictions, entity.PricePrediction{
			Ticker: ticker,
			Date:   today.AddDate(0, 0, day),
			Open:   RoundPrice(open),
			High:   RoundPrice(high),
			Low:    RoundPrice(low),
			Close:  RoundPrice(closePrice),
		})

		// 翌日の基準価格は丸め前の終値
		base = closePrice
	}

	return entity.Forecast{Metrics: metrics, Predictions: predictions}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rnd.Float64()
}

// ModelArtifactPath はティッカーに対応するモデルファイルのパスを返します。
func ModelArtifactPath(ticker string) string {
	return fmt.Sprintf("/models/%s_model.h5", ticker)
}

// RoundPrice は価格を小数第2位に丸めます。
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundMetric は評価指標を小数第4位に丸めます（レスポンス用）。
func RoundMetric(v float64) float64 {
	return math.Round(v*10000) / 10000
}
