// Package middleware はgin用の共通ミドルウェアを提供します。
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stock_forecast/internal/api"
)

const (
	// HeaderRequestID はリクエストIDを受け渡すヘッダー名です。
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID はgin.Contextに保存するリクエストIDのキーです。
	ContextRequestID = "requestID"
)

// RequestID は受信ヘッダーのIDを引き継ぎ、無ければUUIDを採番してレスポンスヘッダーに付けます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Logger はリクエストごとにzap.L()へアクセスログを出力します。
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("body_size", c.Writer.Size()),
			zap.String("request_id", c.GetString(ContextRequestID)),
		}

		switch {
		case status >= 500:
			zap.L().Error("Server error", fields...)
		case status >= 400:
			zap.L().Warn("Client error", fields...)
		default:
			zap.L().Info("Request completed", fields...)
		}
	}
}

// RequestObserver はHTTPメトリクスの記録先です。*metrics.Recorderがこれを満たします。
type RequestObserver interface {
	RequestStarted()
	RequestFinished(route, method string, status int, elapsed time.Duration)
}

// Metrics はルートテンプレート単位でリクエスト数とレイテンシを記録します。
func Metrics(obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		obs.RequestStarted()
		start := time.Now()

		// ハンドラーがpanicしても必ず記録する。panicは外側のRecoveryに渡す
		defer func() {
			// 未登録パスはカーディナリティを抑えるためまとめる
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			if r := recover(); r != nil {
				obs.RequestFinished(route, c.Request.Method, http.StatusInternalServerError, time.Since(start))
				panic(r)
			}
			obs.RequestFinished(route, c.Request.Method, c.Writer.Status(), time.Since(start))
		}()

		c.Next()
	}
}

// Limiter はキーごとの呼び出し可否を判定します。*ratelimiter.KeyedLimiterがこれを満たします。
type Limiter interface {
	Allow(key string) bool
}

// RateLimit はクライアントIPごとに呼び出し頻度を制限し、超過時は429を返します。
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
