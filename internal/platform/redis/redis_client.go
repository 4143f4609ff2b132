// Package redis はgo-redisクライアントの生成を提供します。
package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config はRedis接続設定です。
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewRedisClient は接続を確認したうえでクライアントを返します。
// 接続できない場合、クライアントは閉じられエラーが返ります。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 3 * time.Second,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		zap.L().Error("Redis connection failed", zap.String("address", cfg.Addr()), zap.Error(err))
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr(), err)
	}

	zap.L().Info("Redis connection successful", zap.String("address", cfg.Addr()))
	return rdb, nil
}
