package redislock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

const (
	// DefaultTTL bounds how long a crashed holder can keep a table locked.
	DefaultTTL = 2 * time.Minute
	// DefaultRetry is the pause between acquisition attempts.
	DefaultRetry = 100 * time.Millisecond
	// DefaultPrefix namespaces lock keys.
	DefaultPrefix = "tablesync:lock:"
)

// releaseScript deletes the key only when it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// Client is the subset of the redis command surface used by Locker.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Options configures a Locker.
type Options struct {
	TTL    time.Duration
	Retry  time.Duration
	Prefix string
	Logger *slog.Logger
}

// Locker serialises table writes across processes with SET NX locks.
type Locker struct {
	client Client
	ttl    time.Duration
	retry  time.Duration
	prefix string
	logger *slog.Logger
	token  func() string
}

var _ tablesync.Locker = (*Locker)(nil)

// New builds a Locker over client.
func New(client Client, opts Options) *Locker {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Retry <= 0 {
		opts.Retry = DefaultRetry
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Locker{
		client: client,
		ttl:    opts.TTL,
		retry:  opts.Retry,
		prefix: opts.Prefix,
		logger: opts.Logger,
		token:  uuid.NewString,
	}
}

// NewClient dials redis at addr.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Lock polls until the key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := l.token()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redislock: acquire %s: %w", key, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}
		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Locker) releaser(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn("redis lock release failed", "key", key, "error", err)
		}
	}
}
