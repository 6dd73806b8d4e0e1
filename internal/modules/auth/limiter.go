package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const limiterKeyPrefix = "gearvault:login_attempts:"

// RedisLimiter keeps failed login counters in Redis so every API instance
// shares the same lockout window.
type RedisLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewRedisLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func (l *RedisLimiter) Locked(ctx context.Context, key string) (bool, error) {
	raw, err := l.client.Get(ctx, limiterKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, err
	}
	return n >= l.maxAttempts, nil
}

// Fail increments the counter. The window starts at the first failure.
func (l *RedisLimiter) Fail(ctx context.Context, key string) (int64, error) {
	n, err := l.client.Incr(ctx, limiterKeyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := l.client.Expire(ctx, limiterKeyPrefix+key, l.window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, limiterKeyPrefix+key).Err()
}

// MemoryLimiter is the single-process fallback used when no Redis address
// is configured.
type MemoryLimiter struct {
	mu          sync.Mutex
	entries     map[string]*attempts
	maxAttempts int64
	window      time.Duration
	now         func() time.Time
	nextPrune   time.Time
}

type attempts struct {
	count   int64
	expires time.Time
}

func NewMemoryLimiter(maxAttempts int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries:     make(map[string]*attempts),
		maxAttempts: int64(maxAttempts),
		window:      window,
		now:         time.Now,
	}
}

func (l *MemoryLimiter) Locked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := l.current(key)
	return a != nil && a.count >= l.maxAttempts, nil
}

func (l *MemoryLimiter) Fail(_ context.Context, key string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	a := l.current(key)
	if a == nil {
		a = &attempts{expires: l.now().Add(l.window)}
		l.entries[key] = a
	}
	a.count++
	return a.count, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

// prune drops every expired entry, at most once per window, so keys that
// are never seen again do not pile up. Callers hold mu.
func (l *MemoryLimiter) prune() {
	now := l.now()
	if now.Before(l.nextPrune) {
		return
	}
	for key, a := range l.entries {
		if !now.Before(a.expires) {
			delete(l.entries, key)
		}
	}
	l.nextPrune = now.Add(l.window)
}

// current drops an expired entry. Callers hold mu.
func (l *MemoryLimiter) current(key string) *attempts {
	a, ok := l.entries[key]
	if !ok {
		return nil
	}
	if !l.now().Before(a.expires) {
		delete(l.entries, key)
		return nil
	}
	return a
}
