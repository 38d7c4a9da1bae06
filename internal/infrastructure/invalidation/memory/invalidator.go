// Package memory is a process-local invalidation fan-out for single-node runs
// and tests. Subscribers register a callback per cache group.
package memory

import (
	"context"
	"sync"

	"github.com/avolkov/docstream/internal/core/domain"
)

type Invalidator struct {
	mu   sync.RWMutex
	subs map[domain.CacheGroup][]func()
}

func New() *Invalidator {
	return &Invalidator{subs: make(map[domain.CacheGroup][]func())}
}

func (i *Invalidator) Subscribe(group domain.CacheGroup, fn func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.subs[group] = append(i.subs[group], fn)
}

func (i *Invalidator) Invalidate(_ context.Context, group domain.CacheGroup) error {
	i.mu.RLock()
	callbacks := append(([]func())(nil), i.subs[group]...)
	i.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
	return nil
}
