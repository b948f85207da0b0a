package redislock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	setErr  error
	evals   int
	lastTTL time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	f.lastTTL = expiration
	if _, held := f.values[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evals++
	if f.values[keys[0]] == args[0] {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestLockerAcquireAndRelease(t *testing.T) {
	fake := newFakeRedis()
	locker := New(fake, Options{TTL: time.Minute, Retry: time.Millisecond})

	unlock, err := locker.Lock(context.Background(), "dashboard_statsTable")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}
	if _, held := fake.values["tablesync:lock:dashboard_statsTable"]; !held {
		t.Fatalf("expected prefixed key to be set, got %v", fake.values)
	}
	if fake.lastTTL != time.Minute {
		t.Fatalf("expected ttl to be forwarded, got %s", fake.lastTTL)
	}
	unlock()
	unlock()
	if fake.evals != 1 {
		t.Fatalf("expected a single release, got %d", fake.evals)
	}
	if len(fake.values) != 0 {
		t.Fatalf("expected key to be released")
	}
}

func TestLockerWaitsForHolder(t *testing.T) {
	fake := newFakeRedis()
	locker := New(fake, Options{Retry: time.Millisecond})
	unlock, err := locker.Lock(context.Background(), "t")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(context.Background(), "t")
		if err == nil {
			second()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatalf("second lock should wait for the holder")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("second lock never acquired")
	}
}

func TestLockerHonoursContext(t *testing.T) {
	fake := newFakeRedis()
	fake.values["tablesync:lock:t"] = "someone-else"
	locker := New(fake, Options{Retry: time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "t"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLockerDoesNotReleaseForeignToken(t *testing.T) {
	fake := newFakeRedis()
	locker := New(fake, Options{Retry: time.Millisecond})
	unlock, err := locker.Lock(context.Background(), "t")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}
	fake.values["tablesync:lock:t"] = "stolen"
	unlock()
	if fake.values["tablesync:lock:t"] != "stolen" {
		t.Fatalf("foreign token must survive release")
	}
}

func TestLockerSurfacesRedisErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.setErr = errors.New("connection refused")
	if _, err := New(fake, Options{}).Lock(context.Background(), "t"); err == nil {
		t.Fatalf("expected redis error")
	}
}
