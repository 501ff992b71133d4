package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisLoginThrottlePrefix  = "auth:login:failures:"
	redisLoginThrottleTimeout = 500 * time.Millisecond
)

// El TTL se fija solo con el primer fallo: la ventana no se alarga con cada intento.
const redisRecordFailureScript = `
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`

type redisThrottleClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisLoginThrottle struct {
	logger *zap.Logger
	client redisThrottleClient
	window time.Duration
	max    int
}

// NewRedisLoginThrottle comparte los contadores entre instancias. Si Redis falla
// el login no se bloquea.
func NewRedisLoginThrottle(logger *zap.Logger, client *redis.Client, window time.Duration, max int) LoginThrottle {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginThrottle{logger: logger, client: client, window: window, max: max}
}

func (l *redisLoginThrottle) Allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, redisLoginThrottleTimeout)
	defer cancel()

	n, err := l.client.Get(ctx, redisLoginThrottlePrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return true
	}
	if err != nil {
		l.logger.Warn("login throttle read failed", zap.Error(err))
		return true
	}
	return n < l.max
}

func (l *redisLoginThrottle) RecordFailure(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, redisLoginThrottleTimeout)
	defer cancel()

	err := l.client.Eval(ctx, redisRecordFailureScript, []string{redisLoginThrottlePrefix + key}, l.window.Milliseconds()).Err()
	if err != nil {
		l.logger.Warn("login throttle record failed", zap.Error(err))
	}
}

func (l *redisLoginThrottle) Reset(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, redisLoginThrottleTimeout)
	defer cancel()

	if err := l.client.Del(ctx, redisLoginThrottlePrefix+key).Err(); err != nil {
		l.logger.Warn("login throttle reset failed", zap.Error(err))
	}
}
