// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stock_forecast/internal/feature/forecast/domain/entity"
	"stock_forecast/internal/feature/forecast/usecase"
)

// CachingForecastRepository decorates a ForecastRepository with Redis caching.
// Reads are cached until the next midnight in loc.
//
// Each ticker has a version token (<ns>:version:<ticker>) and cached values live under keys
// that embed it. Save installs a fresh token after the commit, so every value cached before
// it, including one written back by a read that raced the Save, is never read again.
type CachingForecastRepository struct {
	inner     usecase.ForecastRepository
	rdb       redis.Cmdable
	namespace string
	loc       *time.Location
	now       func() time.Time
	newToken  func() string
}

var _ usecase.ForecastRepository = (*CachingForecastRepository)(nil)

// invalidateTimeout はSave後のバージョン更新に使う上限時間です。
const invalidateTimeout = 3 * time.Second

// NewCachingForecastRepository decorates a ForecastRepository with Redis caching.
// If namespace is empty, it uses "forecast". A nil loc means UTC. A nil rdb disables caching.
func NewCachingForecastRepository(rdb redis.Cmdable, inner usecase.ForecastRepository, namespace string, loc *time.Location) *CachingForecastRepository {
	if namespace == "" {
		namespace = "forecast"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CachingForecastRepository{
		inner:     inner,
		rdb:       rdb,
		namespace: namespace,
		loc:       loc,
		now:       time.Now,
		newToken:  uuid.NewString,
	}
}

// Save persists through the inner repository and rotates the ticker's cache version.
// The rotation is not tied to the caller's cancellation: the data is already committed.
func (c *CachingForecastRepository) Save(ctx context.Context, metrics entity.ModelMetrics, predictions []entity.PricePrediction) error {
	if err := c.inner.Save(ctx, metrics, predictions); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := c.rdb.Set(ictx, c.versionKey(metrics.Ticker), c.newToken(), 0).Err(); err != nil {
		// ここで失敗すると翌日0時まで古い予測が返る可能性がある
		zap.L().Error("failed to invalidate forecast cache; stale reads possible until expiry",
			zap.String("ticker", metrics.Ticker), zap.Error(err))
	}
	return nil
}

// FindMetrics retrieves metrics, checking cache first then falling back to the database.
// Not-found results are not cached.
func (c *CachingForecastRepository) FindMetrics(ctx context.Context, ticker string) (*entity.ModelMetrics, error) {
	version, ok := c.version(ctx, ticker)
	if !ok {
		return c.inner.FindMetrics(ctx, ticker)
	}

	key := c.metricsKey(ticker, version)
	var cached entity.ModelMetrics
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	m, err := c.inner.FindMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, m)
	return m, nil
}

// ListPredictions retrieves predictions, checking cache first then falling back to the database.
// Empty results are not cached.
func (c *CachingForecastRepository) ListPredictions(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
	version, ok := c.version(ctx, ticker)
	if !ok {
		return c.inner.ListPredictions(ctx, ticker)
	}

	key := c.predictionsKey(ticker, version)
	var cached []entity.PricePrediction
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.ListPredictions(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		c.set(ctx, key, out)
	}
	return out, nil
}

// version returns the ticker's current cache version, creating one if absent.
// ok is false when Redis is unavailable; callers then bypass the cache.
func (c *CachingForecastRepository) version(ctx context.Context, ticker string) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	key := c.versionKey(ticker)

	v, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		return v, true
	}
	if !errors.Is(err, redis.Nil) {
		zap.L().Warn("forecast cache unavailable", zap.String("ticker", ticker), zap.Error(err))
		return "", false
	}

	// 初回: 他のリクエストと競合した場合は先に書かれた値を使う
	token := c.newToken()
	created, err := c.rdb.SetNX(ctx, key, token, 0).Result()
	if err != nil {
		return "", false
	}
	if created {
		return token, true
	}
	v, err = c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

// get decodes a cached value into dst. Corrupted entries are deleted.
func (c *CachingForecastRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *CachingForecastRepository) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, b, TimeUntilNextMidnight(c.now(), c.loc)).Err()
}

func (c *CachingForecastRepository) versionKey(ticker string) string {
	return fmt.Sprintf("%s:version:%s", c.namespace, safe(ticker))
}

func (c *CachingForecastRepository) metricsKey(ticker, version string) string {
	return fmt.Sprintf("%s:metrics:%s:%s", c.namespace, safe(ticker), version)
}

func (c *CachingForecastRepository) predictionsKey(ticker, version string) string {
	return fmt.Sprintf("%s:predictions:%s:%s", c.namespace, safe(ticker), version)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
