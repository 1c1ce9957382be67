package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ventana fija por clave. Devuelve {conteo, ms restantes de la ventana}.
const redisRateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`

// GenerationRateLimiter limita cuantas personas puede pedir un cliente por ventana.
// Cuando niega, retryAfter es lo que falta para que la ventana se reinicie.
type GenerationRateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration)
}

type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisRateLimiter devuelve nil si no hay cliente: sin Redis no se limita.
func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int) GenerationRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "persona:rl:",
	}
}

// Allow es fail-open: si Redis no responde se deja pasar el request.
func (l *redisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l == nil || l.client == nil {
		return true, 0
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false, l.window
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	count, ttl, err := l.incr(ctx, l.prefix+normalizedKey)
	if err != nil {
		return true, 0
	}
	if count <= int64(l.max) {
		return true, 0
	}
	if ttl <= 0 {
		ttl = l.window
	}
	return false, ttl
}

func (l *redisRateLimiter) incr(ctx context.Context, key string) (int64, time.Duration, error) {
	vals, err := l.client.Eval(ctx, redisRateLimitScript, []string{key}, l.window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("rate limit script: unexpected reply %v", vals)
	}
	count, ok := vals[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("rate limit script: count %T", vals[0])
	}
	ttl, _ := vals[1].(int64)
	return count, time.Duration(ttl) * time.Millisecond, nil
}
