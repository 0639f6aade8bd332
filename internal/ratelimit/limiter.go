// Package ratelimit implements sliding-window rate limiting over Redis
// sorted sets, applied to the auth endpoints to slow down credential
// stuffing.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
}

func NewLimiter(client *redis.Client, keyPrefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
	}
}

// The script removes entries that slid out of the window, counts what is
// left and admits the request only under the limit. It runs atomically on
// the Redis side.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current = redis.call('ZCARD', key)
if current >= limit then
	return 0
end

local counter = redis.call('INCR', key .. ':seq')
redis.call('ZADD', key, now, now .. ':' .. counter)
local expire_seconds = math.ceil(window_ms / 1000)
redis.call('EXPIRE', key, expire_seconds)
redis.call('EXPIRE', key .. ':seq', expire_seconds)
return 1
`)

// Allow reports whether a request identified by key fits into the window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()

	admitted, err := slidingWindowScript.Run(
		ctx,
		l.client,
		[]string{l.keyPrefix + key},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	return admitted == 1, nil
}
