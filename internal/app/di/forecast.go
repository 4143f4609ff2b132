// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_forecast/internal/config"
	authadapters "stock_forecast/internal/feature/auth/adapters"
	"stock_forecast/internal/feature/forecast/adapters"
	"stock_forecast/internal/feature/forecast/usecase"
	"stock_forecast/internal/platform/cache"
	"stock_forecast/internal/platform/events"
)

// Models はマイグレーション対象の全モデルです。
func Models() []any {
	return append(adapters.Models(), &authadapters.UserModel{})
}

// NewForecastRepository creates a ForecastRepository implementation.
// If Redis is available, the gorm repository is wrapped with a cache.
// Otherwise, it reads straight from the database.
func NewForecastRepository(db *gorm.DB, rdb *redis.Client, loc *time.Location) usecase.ForecastRepository {
	repo := adapters.NewForecastRepository(db)
	if rdb != nil {
		return cache.NewCachingForecastRepository(rdb, repo, "forecast", loc)
	}
	return repo
}

// NewForecastUsecase は乱数源を初期化してForecastUsecaseを生成します。
// seedが0の場合は現在時刻から生成します。
func NewForecastUsecase(repo usecase.ForecastRepository, seed uint64, opts ...usecase.Option) *usecase.ForecastUsecase {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen := usecase.NewGenerator(usecase.NewRandomSource(seed), nil)
	return usecase.NewForecastUsecase(repo, gen, opts...)
}

// NewEventPublisher はKafkaへのイベント送信を生成します。ブローカー未設定の場合はnilを返します。
func NewEventPublisher(cfg config.KafkaConfig) (*events.KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	return events.NewKafkaPublisher(events.Config{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		WriteTimeout: cfg.WriteTimeout,
		Async:        cfg.Async,
	})
}
