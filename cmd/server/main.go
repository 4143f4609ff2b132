package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stock_forecast/internal/app/di"
	"stock_forecast/internal/app/router"
	"stock_forecast/internal/config"
	forecastusecase "stock_forecast/internal/feature/forecast/usecase"
	"stock_forecast/internal/platform/db"
	platformhandler "stock_forecast/internal/platform/http/handler"
	"stock_forecast/internal/platform/logger"
	"stock_forecast/internal/platform/metrics"
	infraredis "stock_forecast/internal/platform/redis"
)

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
	defer sync()

	if err := run(cfg); err != nil {
		zap.L().Error("server stopped with error", zap.Error(err))
		sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// db
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
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			zap.L().Error("failed to close database", zap.Error(err))
		}
	}()
	checks := map[string]platformhandler.Pinger{"database": platformhandler.PingFunc(sqlDB.PingContext)}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		tmp, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			zap.L().Warn("Redis unavailable. Running without cache.", zap.Error(err))
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					zap.L().Error("Failed to close Redis client", zap.Error(err))
				}
			}()
			checks["redis"] = platformhandler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		}
	}

	loc, err := time.LoadLocation(cfg.Redis.Timezone)
	if err != nil {
		return fmt.Errorf("load cache timezone %q: %w", cfg.Redis.Timezone, err)
	}

	// Forecast
	rec := metrics.New()
	opts := []forecastusecase.Option{forecastusecase.WithRecorder(rec)}
	publisher, err := di.NewEventPublisher(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	if publisher != nil {
		opts = append(opts, forecastusecase.WithPublisher(publisher))
		defer func() {
			if err := publisher.Close(); err != nil {
				zap.L().Error("failed to close event publisher", zap.Error(err))
			}
		}()
	}
	forecastUC := di.NewForecastUsecase(di.NewForecastRepository(gdb, rdb, loc), cfg.Forecast.Seed, opts...)

	// Insight
	analyzer, err := di.NewTextAnalyzer(ctx, cfg.Gemini)
	if err != nil {
		// コメント生成はなくても動作する
		zap.L().Warn("Gemini unavailable. Insight endpoint disabled.", zap.Error(err))
	}

	if cfg.Auth.JWTSecret == "" {
		zap.L().Warn("JWT secret is not set. Set JWT_SECRET in production.")
	}

	handlers := di.NewHandlers(cfg, di.Deps{
		DB:           gdb,
		Forecast:     forecastUC,
		Analyzer:     analyzer,
		HealthChecks: checks,
	})
	engine := router.NewRouter(handlers, di.NewRouterOptions(cfg, rec))

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zap.L().Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	zap.L().Info("server exited")
	return nil
}
