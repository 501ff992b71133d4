package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newClockedThrottle(window time.Duration, max int, now *time.Time) *memoryLoginThrottle {
	l := NewLoginThrottle(window, max).(*memoryLoginThrottle)
	l.now = func() time.Time { return *now }
	return l
}

func TestLoginThrottleKey(t *testing.T) {
	if got := LoginThrottleKey(" 10.0.0.1 ", " User@Example.com "); got != "10.0.0.1|user@example.com" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestMemoryLoginThrottle_Window(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newClockedThrottle(time.Minute, 2, &now)
	key := LoginThrottleKey("10.0.0.1", "user@example.com")

	if !l.Allow(ctx, key) {
		t.Fatalf("expected clean key to be allowed")
	}
	l.RecordFailure(ctx, key)
	l.RecordFailure(ctx, key)
	if l.Allow(ctx, key) {
		t.Fatalf("expected key to be throttled after max failures")
	}
	if !l.Allow(ctx, LoginThrottleKey("10.0.0.2", "user@example.com")) {
		t.Fatalf("expected other ip to be independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, key) {
		t.Fatalf("expected key to be allowed after the window")
	}
}

func TestMemoryLoginThrottle_Reset(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newClockedThrottle(time.Minute, 1, &now)

	l.RecordFailure(ctx, "k")
	if l.Allow(ctx, "k") {
		t.Fatalf("expected throttled key")
	}
	l.Reset(ctx, "k")
	if !l.Allow(ctx, "k") {
		t.Fatalf("expected reset key to be allowed")
	}
	if len(l.failures) != 0 {
		t.Fatalf("expected no entries after reset, got %d", len(l.failures))
	}
}

func TestMemoryLoginThrottle_EvictsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newClockedThrottle(15*time.Minute, 10, &now)

	for i := 0; i < 10000; i++ {
		l.RecordFailure(ctx, LoginThrottleKey("10.0.0.1", fmt.Sprintf("user%d@example.com", i)))
	}
	if len(l.failures) != 10000 {
		t.Fatalf("expected 10000 keys, got %d", len(l.failures))
	}

	now = now.Add(time.Hour)
	l.Allow(ctx, "fresh")
	if len(l.failures) != 0 {
		t.Fatalf("expected expired keys to be evicted, got %d", len(l.failures))
	}
}

type mockRedisThrottleClient struct {
	getVal   string
	getErr   error
	evalErr  error
	ctxErr   error
	getKeys  []string
	evalKeys []string
	evalArgs []interface{}
	delKeys  []string
}

func (m *mockRedisThrottleClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.ctxErr = ctx.Err()
	m.getKeys = append(m.getKeys, key)
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	cmd.SetVal(m.getVal)
	return cmd
}

func (m *mockRedisThrottleClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.ctxErr = ctx.Err()
	m.evalKeys = keys
	m.evalArgs = args
	cmd := redis.NewCmd(ctx)
	if m.evalErr != nil {
		cmd.SetErr(m.evalErr)
		return cmd
	}
	cmd.SetVal(int64(1))
	return cmd
}

func (m *mockRedisThrottleClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.ctxErr = ctx.Err()
	m.delKeys = append(m.delKeys, keys...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func newTestRedisThrottle(client redisThrottleClient, max int) *redisLoginThrottle {
	return &redisLoginThrottle{logger: zap.NewNop(), client: client, window: 15 * time.Minute, max: max}
}

func TestRedisLoginThrottle(t *testing.T) {
	ctx := context.Background()
	key := LoginThrottleKey("10.0.0.1", "user@example.com")

	t.Run("nil client constructor", func(t *testing.T) {
		if NewRedisLoginThrottle(zap.NewNop(), nil, time.Minute, 3) != nil {
			t.Fatalf("expected nil throttle without client")
		}
	})

	t.Run("missing counter allows", func(t *testing.T) {
		client := &mockRedisThrottleClient{getErr: redis.Nil}
		if !newTestRedisThrottle(client, 3).Allow(ctx, key) {
			t.Fatalf("expected allow without counter")
		}
		if client.getKeys[0] != "auth:login:failures:10.0.0.1|user@example.com" {
			t.Fatalf("unexpected redis key %q", client.getKeys[0])
		}
	})

	t.Run("counter below and at max", func(t *testing.T) {
		if !newTestRedisThrottle(&mockRedisThrottleClient{getVal: "2"}, 3).Allow(ctx, key) {
			t.Fatalf("expected allow below max")
		}
		if newTestRedisThrottle(&mockRedisThrottleClient{getVal: "3"}, 3).Allow(ctx, key) {
			t.Fatalf("expected deny at max")
		}
	})

	t.Run("redis error fails open", func(t *testing.T) {
		if !newTestRedisThrottle(&mockRedisThrottleClient{getErr: errors.New("redis down")}, 3).Allow(ctx, key) {
			t.Fatalf("expected fail-open on redis errors")
		}
	})

	t.Run("record failure sets window in milliseconds", func(t *testing.T) {
		client := &mockRedisThrottleClient{}
		newTestRedisThrottle(client, 3).RecordFailure(ctx, key)
		if len(client.evalKeys) != 1 || client.evalKeys[0] != redisLoginThrottlePrefix+key {
			t.Fatalf("unexpected eval keys %+v", client.evalKeys)
		}
		if len(client.evalArgs) != 1 || client.evalArgs[0] != int64(900000) {
			t.Fatalf("expected 900000ms window, got %+v", client.evalArgs)
		}
	})

	t.Run("reset deletes counter", func(t *testing.T) {
		client := &mockRedisThrottleClient{}
		newTestRedisThrottle(client, 3).Reset(ctx, key)
		if len(client.delKeys) != 1 || client.delKeys[0] != redisLoginThrottlePrefix+key {
			t.Fatalf("unexpected deleted keys %+v", client.delKeys)
		}
	})

	t.Run("request cancellation reaches redis", func(t *testing.T) {
		client := &mockRedisThrottleClient{getErr: redis.Nil}
		newTestRedisThrottle(client, 3).Allow(ctx, key)
		if client.ctxErr != nil {
			t.Fatalf("expected live context, got %v", client.ctxErr)
		}

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		newTestRedisThrottle(client, 3).Allow(cancelled, key)
		if !errors.Is(client.ctxErr, context.Canceled) {
			t.Fatalf("expected cancelled context to be passed to redis")
		}
	})
}
