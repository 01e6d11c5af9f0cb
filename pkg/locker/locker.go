// Package locker распределенные блокировки ресурсов на Redis (SET NX PX + освобождение по токену)
package locker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired возвращается, если блокировку не удалось получить за время ожидания
	ErrLockNotAcquired = errors.New("locker: lock not acquired")
)

const keyPrefix = "lock:"

// Observer получает метрики ожидания блокировок (реализуется *metrics.Metrics)
type Observer interface {
	ObserveLockWait(scope string, d time.Duration, acquired bool)
}

// Config параметры блокировок
type Config struct {
	// TTL время жизни ключа блокировки; также таймаут контекста критической секции
	TTL time.Duration
	// WaitTimeout сколько ждать освобождения занятого ключа
	WaitTimeout time.Duration
	// RetryInterval пауза между попытками
	RetryInterval time.Duration
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		TTL:           10 * time.Second,
		WaitTimeout:   3 * time.Second,
		RetryInterval: 20 * time.Millisecond,
	}
}

// RedisLocker блокировки по набору ключей
type RedisLocker struct {
	client   *redis.Client
	cfg      Config
	observer Observer
}

// NewRedisLocker создает локер; observer может быть nil
func NewRedisLocker(client *redis.Client, cfg Config, observer Observer) *RedisLocker {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = def.WaitTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	return &RedisLocker{client: client, cfg: cfg, observer: observer}
}

// Key собирает ключ ресурса: Key("asset", 5, "2025-10-15") -> "asset:5:2025-10-15"
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}

type heldKey struct{}

// heldKeys ключи, уже захваченные выше по стеку вызовов
func heldKeys(ctx context.Context) map[string]struct{} {
	held, _ := ctx.Value(heldKey{}).(map[string]struct{})
	return held
}

// WithLock захватывает все ключи (в отсортированном порядке, без дублей), выполняет fn и освобождает ключи
// Ключи, захваченные внешним WithLock в этом же контексте, повторно не берутся
func (l *RedisLocker) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	outer := heldKeys(ctx)
	keys = normalizeKeys(keys, outer)
	token := uuid.NewString()

	acquired := make([]string, 0, len(keys))
	defer func() {
		for _, key := range acquired {
			_ = l.release(context.WithoutCancel(ctx), key, token)
		}
	}()

	for _, key := range keys {
		if err := l.acquire(ctx, key, token); err != nil {
			return err
		}
		acquired = append(acquired, key)
	}

	held := make(map[string]struct{}, len(outer)+len(acquired))
	for k := range outer {
		held[k] = struct{}{}
	}
	for _, k := range acquired {
		held[k] = struct{}{}
	}

	lockCtx, cancel := context.WithTimeout(context.WithValue(ctx, heldKey{}, held), l.cfg.TTL)
	defer cancel()

	return fn(lockCtx)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	start := time.Now()
	deadline := start.Add(l.cfg.WaitTimeout)
	scope := scopeOf(key)

	for {
		ok, err := l.client.SetNX(ctx, keyPrefix+key, token, l.cfg.TTL).Result()
		if err != nil {
			return fmt.Errorf("locker: acquire %s: %w", key, err)
		}
		if ok {
			l.observe(scope, time.Since(start), true)
			return nil
		}

		if time.Now().Add(l.cfg.RetryInterval).After(deadline) {
			l.observe(scope, time.Since(start), false)
			return fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			l.observe(scope, time.Since(start), false)
			return fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, key, ctx.Err())
		case <-time.After(l.cfg.RetryInterval):
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{keyPrefix + key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("locker: release %s: %w", key, err)
	}
	return nil
}

func (l *RedisLocker) observe(scope string, d time.Duration, acquired bool) {
	if l.observer != nil {
		l.observer.ObserveLockWait(scope, d, acquired)
	}
}

func normalizeKeys(keys []string, held map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(keys))
	for k := range held {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func scopeOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
