// Package usecase はモデル学習（シミュレーション）と予測参照のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

// ForecastRepository はモデル評価指標と予測の永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ForecastRepository interface {
	// Save は評価指標をupsertし、ティッカーの既存予測をすべて置き換えます。
	// 実装は両方を1つのトランザクションで書き込みます。
	Save(ctx context.Context, metrics entity.ModelMetrics, predictions []entity.PricePrediction) error
	// FindMetrics は評価指標を返します。未学習の場合はdomain.ErrModelNotFoundを返します。
	FindMetrics(ctx context.Context, ticker string) (*entity.ModelMetrics, error)
	// ListPredictions は日付昇順の予測を返します。存在しない場合は空スライスです。
	ListPredictions(ctx context.Context, ticker string) ([]entity.PricePrediction, error)
}

// EventPublisher は生成完了イベントの送信先です。
type EventPublisher interface {
	PublishForecastGenerated(ctx context.Context, f entity.Forecast) error
}

// TrainingRecorder は学習処理のメトリクスを記録します。
type TrainingRecorder interface {
	ObserveTraining(success bool, elapsed time.Duration)
}

// ForecastGenerator は予測データを合成します。*Generatorがこれを満たします。
type ForecastGenerator interface {
	Generate(ticker string) entity.Forecast
}

// DefaultPublishTimeout はイベント送信に待つ上限時間です。
const DefaultPublishTimeout = 2 * time.Second

// Option はForecastUsecaseの任意設定です。
type Option func(*ForecastUsecase)

// WithPublisher は生成イベントの送信先を設定します。
func WithPublisher(p EventPublisher) Option {
	return func(u *ForecastUsecase) { u.publisher = p }
}

// WithPublishTimeout はイベント送信の上限時間を設定します。
func WithPublishTimeout(d time.Duration) Option {
	return func(u *ForecastUsecase) {
		if d > 0 {
			u.publishTimeout = d
		}
	}
}

// WithRecorder は学習メトリクスの記録先を設定します。
func WithRecorder(r TrainingRecorder) Option {
	return func(u *ForecastUsecase) { u.recorder = r }
}

// ForecastUsecase は予測の生成と参照を提供します。
type ForecastUsecase struct {
	repo      ForecastRepository
	gen       ForecastGenerator
	publisher EventPublisher
	recorder  TrainingRecorder

	publishTimeout time.Duration
}

// NewForecastUsecase はForecastUsecaseの新しいインスタンスを生成します。
func NewForecastUsecase(repo ForecastRepository, gen ForecastGenerator, opts ...Option) *ForecastUsecase {
	u := &ForecastUsecase{repo: repo, gen: gen, publishTimeout: DefaultPublishTimeout}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Train は予測を生成して永続化し、生成結果を返します。
// 同一ティッカーへの並行呼び出しは直列化されません。
func (u *ForecastUsecase) Train(ctx context.Context, rawTicker string) (*entity.Forecast, error) {
	ticker, err := domain.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	f := u.gen.Generate(ticker)
	if err := u.repo.Save(ctx, f.Metrics, f.Predictions); err != nil {
		u.observe(false, start)
		return nil, fmt.Errorf("save forecast for %s: %w", ticker, err)
	}
	u.observe(true, start)

	u.publish(ctx, f)
	return &f, nil
}

// GetModel はティッカーの評価指標を返します。未学習ならdomain.ErrModelNotFoundです。
func (u *ForecastUsecase) GetModel(ctx context.Context, rawTicker string) (*entity.ModelMetrics, error) {
	ticker, err := domain.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	return u.repo.FindMetrics(ctx, ticker)
}

// GetPredictions はティッカーの予測を日付昇順で返します。
func (u *ForecastUsecase) GetPredictions(ctx context.Context, rawTicker string) ([]entity.PricePrediction, error) {
	ticker, err := domain.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}
	return u.repo.ListPredictions(ctx, ticker)
}

// publish は生成イベントを送信します。送信失敗は学習結果に影響させず、待ち時間はpublishTimeoutまでです。
func (u *ForecastUsecase) publish(ctx context.Context, f entity.Forecast) {
	if u.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, u.publishTimeout)
	defer cancel()
	if err := u.publisher.PublishForecastGenerated(pctx, f); err != nil {
		zap.L().Warn("failed to publish forecast event", zap.String("ticker", f.Metrics.Ticker), zap.Error(err))
	}
}

func (u *ForecastUsecase) observe(success bool, start time.Time) {
	if u.recorder != nil {
		u.recorder.ObserveTraining(success, time.Since(start))
	}
}
