package testutil

import (
	"context"
	"sync"
)

// MemoryGuard is an in-process stand-in for the redis transfer guard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]bool)}
}

func (g *MemoryGuard) TryAcquire(ctx context.Context, fingerprint string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[fingerprint] {
		return false, nil
	}
	g.held[fingerprint] = true
	return true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, fingerprint string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, fingerprint)
	return nil
}
