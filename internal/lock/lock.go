// Package lock provides a named try-lock used to keep maintenance sweeps
// from overlapping.
package lock

import (
	"context"
	"sync"
)

// Locker acquires name without waiting. ok is false when another holder
// has it; release must be called once the work is done.
type Locker interface {
	TryLock(ctx context.Context, name string) (release func(), ok bool, err error)
}

type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) TryLock(_ context.Context, name string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[name]; busy {
		return nil, false, nil
	}
	l.held[name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, true, nil
}
