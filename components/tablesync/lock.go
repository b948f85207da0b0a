package tablesync

import (
	"context"
	"sync"
	"sync/atomic"
)

// Locker serialises writes to the same table. Lock blocks until the key is
// free or ctx is done; the returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// KeyedLocker is an in-process Locker with one slot per key.
type KeyedLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewKeyedLocker creates an empty KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{slots: make(map[string]chan struct{})}
}

// Lock acquires key.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	slot := l.slot(key)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() { <-slot })
	}, nil
}

func (l *KeyedLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	return slot
}

// RunGuard admits one run at a time and rejects overlapping attempts
// instead of queueing them.
type RunGuard struct {
	running atomic.Bool
}

// TryStart claims the guard. It returns false while another run holds it.
func (g *RunGuard) TryStart() bool {
	return g.running.CompareAndSwap(false, true)
}

// Done releases the guard.
func (g *RunGuard) Done() {
	g.running.Store(false)
}

// Running reports whether a run holds the guard.
func (g *RunGuard) Running() bool {
	return g.running.Load()
}
