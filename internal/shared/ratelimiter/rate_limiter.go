// Package ratelimiter は処理頻度の制限を提供します。
package ratelimiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter は interval あたり limit 回までに呼び出しを抑えます。
type RateLimiter struct {
	l *rate.Limiter
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が0以下の場合は制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{l: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{l: rate.NewLimiter(rate.Limit(float64(limit)/interval.Seconds()), limit)}
}

// Wait は次の呼び出しが許可されるまで待機します。ctx がキャンセルされるとエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.l.Wait(ctx)
}

// KeyedLimiter はキー（クライアントIPなど）ごとに独立したトークンバケットを持ちます。
type KeyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	buckets map[string]*bucket
	// 最後に古いキーを掃除した時刻。掃除は idleTTL ごとに高々1回
	lastSweep time.Time
}

type bucket struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter は1分あたり perMinute 回、最大 burst 回の連続呼び出しを許可するリミッタを生成します。
// idleTTL の間アクセスがないキーは破棄されます。
func NewKeyedLimiter(perMinute, burst int, idleTTL time.Duration) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow は key の呼び出しを今すぐ許可するかを返します。
func (k *KeyedLimiter) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) > k.idleTTL {
		k.sweep(now)
	}

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{l: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.l.AllowN(now, 1)
}

func (k *KeyedLimiter) sweep(now time.Time) {
	for id, b := range k.buckets {
		if now.Sub(b.lastSeen) > k.idleTTL {
			delete(k.buckets, id)
		}
	}
	k.lastSweep = now
}

// Len は保持しているキー数を返します。
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
