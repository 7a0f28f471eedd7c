package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock реализует domain.RewriteGuard через SET NX с TTL, чтобы блокировка
// переживала падение процесса не дольше ttl и была общей для нескольких реплик API.
type RedisLock struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ domain.RewriteGuard = (*RedisLock)(nil)

// NewRedisLock создаёт блокировку.
func NewRedisLock(client *redis.Client, prefix string, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisLock{client: client, prefix: prefix, ttl: ttl}
}

// Acquire занимает ключ, если он свободен.
func (l *RedisLock) Acquire(ctx context.Context, key string) (func(), bool, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	start := time.Now()
	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	metrics.ObserveNetworkRequest("redis", "lock_acquire", l.prefix, start, err)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		start := time.Now()
		err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err()
		metrics.ObserveNetworkRequest("redis", "lock_release", l.prefix, start, err)
	}, true, nil
}

// Connect создаёт клиента Redis и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
