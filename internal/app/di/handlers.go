package di

import (
	"time"

	"gorm.io/gorm"

	"stock_forecast/internal/app/router"
	"stock_forecast/internal/config"
	authadapters "stock_forecast/internal/feature/auth/adapters"
	authhandler "stock_forecast/internal/feature/auth/transport/handler"
	authusecase "stock_forecast/internal/feature/auth/usecase"
	forecasthandler "stock_forecast/internal/feature/forecast/transport/handler"
	forecastusecase "stock_forecast/internal/feature/forecast/usecase"
	insighthandler "stock_forecast/internal/feature/insight/transport/handler"
	insightusecase "stock_forecast/internal/feature/insight/usecase"
	searchadapters "stock_forecast/internal/feature/stocksearch/adapters"
	searchhandler "stock_forecast/internal/feature/stocksearch/transport/handler"
	searchusecase "stock_forecast/internal/feature/stocksearch/usecase"
	"stock_forecast/internal/platform/chart"
	platformhandler "stock_forecast/internal/platform/http/handler"
	jwtmw "stock_forecast/internal/platform/jwt"
	"stock_forecast/internal/platform/metrics"
	"stock_forecast/internal/shared/ratelimiter"
)

// Deps はハンドラー生成に必要な外部依存です。
type Deps struct {
	DB       *gorm.DB
	Forecast *forecastusecase.ForecastUsecase
	// Analyzer がnilの場合、insightエンドポイントは503を返します。
	Analyzer insightusecase.TextAnalyzer
	// HealthChecks は /healthz で確認する依存先です。
	HealthChecks map[string]platformhandler.Pinger
}

// NewHandlers は全フィーチャーのハンドラーを組み立てます。
func NewHandlers(cfg *config.Config, deps Deps) router.Handlers {
	searchUC := searchusecase.NewSearchUsecase(searchadapters.NewStaticCatalog(), searchusecase.Config{
		MatchEmptyQuery: cfg.Search.MatchEmptyQuery,
		MaxResults:      cfg.Search.MaxResults,
	})

	userRepo := authadapters.NewUserRepository(deps.DB)
	authUC := authusecase.NewAuthUsecase(userRepo, jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))

	insightUC := insightusecase.NewInsightUsecase(deps.Forecast, deps.Analyzer)

	return router.Handlers{
		Health:   platformhandler.NewHealthHandler(deps.HealthChecks),
		Auth:     authhandler.NewAuthHandler(authUC),
		Search:   searchhandler.NewSearchHandler(searchUC),
		Forecast: forecasthandler.NewForecastHandler(deps.Forecast, chart.NewRenderer()),
		Insight:  insighthandler.NewInsightHandler(insightUC),
	}
}

// NewRouterOptions は設定からルーターの任意設定を組み立てます。recはnilでも構いません。
func NewRouterOptions(cfg *config.Config, rec *metrics.Recorder) router.Options {
	opts := router.Options{
		JWTSecret:              cfg.Auth.JWTSecret,
		RequireAuthForTraining: cfg.Auth.RequireForTraining,
	}
	if cfg.RateLimit.TrainingPerMinute > 0 {
		opts.TrainingLimiter = ratelimiter.NewKeyedLimiter(cfg.RateLimit.TrainingPerMinute, cfg.RateLimit.Burst, 10*time.Minute)
	}
	// typed nilをインターフェースに入れない
	if rec != nil {
		opts.Metrics = rec
	}
	return opts
}
