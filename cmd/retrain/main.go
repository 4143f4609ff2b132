package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stock_forecast/internal/app/di"
	"stock_forecast/internal/config"
	forecastusecase "stock_forecast/internal/feature/forecast/usecase"
	searchadapters "stock_forecast/internal/feature/stocksearch/adapters"
	"stock_forecast/internal/platform/db"
	"stock_forecast/internal/platform/logger"
	infraredis "stock_forecast/internal/platform/redis"
	"stock_forecast/internal/shared/ratelimiter"
)

// カタログ全銘柄の予測を再生成するバッチです。
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	sync, err := logger.Install(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		zap.L().Error("retrain failed", zap.Error(err))
		sync()
		os.Exit(1)
	}
	sync()
}

func run(ctx context.Context, cfg *config.Config) error {
	gdb, err := db.Open(db.Config{
		Driver:         cfg.DB.Driver,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		Name:           cfg.DB.Name,
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		SSLMode:        cfg.DB.SSLMode,
		InstanceName:   cfg.DB.InstanceName,
		SQLitePath:     cfg.DB.SQLitePath,
		ConnectTimeout: cfg.DB.ConnectTimeout,
		MaxOpenConns:   cfg.DB.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if cfg.DB.RunMigrations {
		if err := db.Migrate(gdb, di.Models()...); err != nil {
			return err
		}
	}

	// サーバーと同じキャッシュを使い、保存時に古いエントリを無効化する
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		tmp, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			zap.L().Warn("Redis unavailable. Cached predictions expire at midnight.", zap.Error(err))
		} else {
			rdb = tmp
			defer rdb.Close()
		}
	}
	loc, err := time.LoadLocation(cfg.Redis.Timezone)
	if err != nil {
		return fmt.Errorf("load cache timezone %q: %w", cfg.Redis.Timezone, err)
	}

	var opts []forecastusecase.Option
	publisher, err := di.NewEventPublisher(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	if publisher != nil {
		opts = append(opts, forecastusecase.WithPublisher(publisher))
		defer publisher.Close()
	}

	trainer := di.NewForecastUsecase(di.NewForecastRepository(gdb, rdb, loc), cfg.Forecast.Seed, opts...)
	uc := forecastusecase.NewRetrainUsecase(trainer, ratelimiter.NewRateLimiter(cfg.Retrain.PerMinute, time.Minute))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	tickers := searchadapters.NewStaticCatalog().Symbols()
	summary, err := uc.RetrainAll(ctx, tickers)
	if err != nil {
		return fmt.Errorf("retrain interrupted after %d tickers: %w", len(summary.Trained), err)
	}
	zap.L().Info("retrain ok", zap.Int("trained", len(summary.Trained)), zap.Strings("failed", summary.Failed))
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d tickers failed", len(summary.Failed), len(tickers))
	}
	return nil
}
