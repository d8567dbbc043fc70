// README: In-memory backend for dev mode and tests (no DSN configured).
package planner

import (
	"context"
	"sync"
)

type MemoryBackend struct {
	mu    sync.Mutex
	state RouteState
	ok    bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(ctx context.Context) (RouteState, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.ok, nil
}

func (b *MemoryBackend) Save(ctx context.Context, state RouteState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
	b.ok = true
	return nil
}
