package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	count      int64
	ttlMillis  int64
	reply      interface{}
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	if m.reply != nil {
		cmd.SetVal(m.reply)
		return cmd
	}
	cmd.SetVal([]interface{}{m.count, m.ttlMillis})
	return cmd
}

func newTestLimiter(mock *mockRedisEvaler, window time.Duration, max int) *redisRateLimiter {
	return &redisRateLimiter{client: mock, window: window, max: max, prefix: "persona:rl:"}
}

func TestRedisRateLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisRateLimiter
		if ok, _ := l.Allow(ctx, "ip:10.0.0.1"); !ok {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("no client returns nil limiter", func(t *testing.T) {
		if NewRedisRateLimiter(nil, time.Minute, 3) != nil {
			t.Fatalf("expected nil limiter without redis client")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := newTestLimiter(&mockRedisEvaler{count: 1}, time.Minute, 3)
		if ok, _ := l.Allow(ctx, "   "); ok {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{count: 2, ttlMillis: 590_000}
		l := newTestLimiter(mock, 10*time.Minute, 5)
		ok, retry := l.Allow(ctx, " Sub:Client-A ")
		if !ok || retry != 0 {
			t.Fatalf("expected allow without retry, got %t %s", ok, retry)
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "persona:rl:sub:client-a" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != int64(600_000) {
			t.Fatalf("expected window millis=600000, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisRateLimitScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny reports remaining window", func(t *testing.T) {
		l := newTestLimiter(&mockRedisEvaler{count: 6, ttlMillis: 42_000}, time.Minute, 5)
		ok, retry := l.Allow(ctx, "ip:1.2.3.4")
		if ok {
			t.Fatalf("expected deny when count > max")
		}
		if retry != 42*time.Second {
			t.Fatalf("expected retry 42s, got %s", retry)
		}
	})

	t.Run("deny without ttl falls back to window", func(t *testing.T) {
		l := newTestLimiter(&mockRedisEvaler{count: 9, ttlMillis: -1}, time.Minute, 5)
		if _, retry := l.Allow(ctx, "ip:1.2.3.4"); retry != time.Minute {
			t.Fatalf("expected window as retry, got %s", retry)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newTestLimiter(&mockRedisEvaler{err: errors.New("redis down")}, time.Minute, 5)
		if ok, _ := l.Allow(ctx, "ip:1.2.3.4"); !ok {
			t.Fatalf("expected fail-open on redis errors")
		}
	})

	t.Run("unexpected reply fail-open", func(t *testing.T) {
		l := newTestLimiter(&mockRedisEvaler{reply: "OK"}, time.Minute, 5)
		if ok, _ := l.Allow(ctx, "ip:1.2.3.4"); !ok {
			t.Fatalf("expected fail-open on malformed script reply")
		}
	})
}
