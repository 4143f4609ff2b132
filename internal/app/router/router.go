// Package router はHTTPルーティングとミドルウェアの組み立てを行います。
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authhandler "stock_forecast/internal/feature/auth/transport/handler"
	forecasthandler "stock_forecast/internal/feature/forecast/transport/handler"
	insighthandler "stock_forecast/internal/feature/insight/transport/handler"
	searchhandler "stock_forecast/internal/feature/stocksearch/transport/handler"
	platformhandler "stock_forecast/internal/platform/http/handler"
	"stock_forecast/internal/platform/http/middleware"
	jwtmw "stock_forecast/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Health   *platformhandler.HealthHandler
	Auth     *authhandler.AuthHandler
	Search   *searchhandler.SearchHandler
	Forecast *forecasthandler.ForecastHandler
	Insight  *insighthandler.InsightHandler
}

// MetricsRecorder はリクエストメトリクスの記録と公開を行います。*metrics.Recorderがこれを満たします。
type MetricsRecorder interface {
	middleware.RequestObserver
	Handler() http.Handler
}

// Options はルーターの任意設定です。
type Options struct {
	// JWTSecret はトークン検証に使う鍵です。
	JWTSecret string
	// RequireAuthForTraining がtrueの場合、学習エンドポイントにBearerトークンを要求します。
	RequireAuthForTraining bool
	// TrainingLimiter が設定されている場合、学習エンドポイントをクライアントIPごとに制限します。
	TrainingLimiter middleware.Limiter
	// Metrics が設定されている場合、/metrics を公開しリクエストを記録します。
	Metrics MetricsRecorder
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	// 新規ユーザー登録
	r.POST("/signup", h.Auth.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", h.Auth.Login)

	stocks := r.Group("/stocks")
	{
		stocks.GET("/search", h.Search.Search)
		stocks.GET("/:ticker/model", h.Forecast.GetModel)
		stocks.GET("/:ticker/predictions", h.Forecast.GetPredictions)
		stocks.GET("/:ticker/predictions/chart.png", h.Forecast.Chart)
		stocks.GET("/:ticker/insight", h.Insight.Explain)

		// 学習は負荷が高いため認証とレート制限を任意で適用
		var train []gin.HandlerFunc
		if opts.RequireAuthForTraining {
			train = append(train, jwtmw.AuthRequired(opts.JWTSecret))
		}
		if opts.TrainingLimiter != nil {
			train = append(train, middleware.RateLimit(opts.TrainingLimiter))
		}
		train = append(train, h.Forecast.Train)
		stocks.POST("/:ticker/model", train...)
	}

	return r
}
