// Package cachesync maps committed mutations to cache-invalidation signals so
// every view backed by server-derived data refetches without a manual refresh.
// The cache itself lives elsewhere; the bridge only tells it what went stale.
package cachesync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avolkov/docstream/internal/core/domain"
	"github.com/avolkov/docstream/internal/core/ports"
	"github.com/avolkov/docstream/internal/debounce"
)

const invalidateTimeout = 5 * time.Second

type Bridge struct {
	invalidator ports.CacheInvalidator
	log         *slog.Logger
	observe     func(domain.CacheGroup)

	// window > 0 coalesces bursts of invalidations per group, so a batch of
	// uploads settles into one signal per group instead of one per file.
	window  time.Duration
	mu      sync.Mutex
	pending map[domain.CacheGroup]*debounce.Debouncer[domain.CacheGroup]
}

type BridgeOptions struct {
	Logger         *slog.Logger
	Observe        func(domain.CacheGroup)
	CoalesceWindow time.Duration
}

func NewBridge(invalidator ports.CacheInvalidator, opts BridgeOptions) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		invalidator: invalidator,
		log:         logger,
		observe:     opts.Observe,
		window:      opts.CoalesceWindow,
		pending:     make(map[domain.CacheGroup]*debounce.Debouncer[domain.CacheGroup]),
	}
}

// UploadCommitted fires after an upload reaches completed.
func (b *Bridge) UploadCommitted(ctx context.Context) {
	b.fire(ctx, domain.CacheDocuments, domain.CacheMetrics)
}

// DocumentDeleted fires after the remote confirms a delete.
func (b *Bridge) DocumentDeleted(ctx context.Context) {
	b.fire(ctx, domain.CacheDocuments, domain.CacheMetrics)
}

// ReprocessAccepted fires after the remote accepts a single reprocess.
func (b *Bridge) ReprocessAccepted(ctx context.Context) {
	b.fire(ctx, domain.CacheDocuments)
}

// BatchAccepted fires after the remote accepts a batch reprocess.
func (b *Bridge) BatchAccepted(ctx context.Context) {
	b.fire(ctx, domain.CacheDocuments, domain.CacheMetrics)
}

// VendorChanged fires after a vendor record mutation.
func (b *Bridge) VendorChanged(ctx context.Context) {
	b.fire(ctx, domain.CacheVendors)
}

// ProjectChanged fires after a project record mutation.
func (b *Bridge) ProjectChanged(ctx context.Context) {
	b.fire(ctx, domain.CacheProjects)
}

// Close cancels pending coalesced invalidations.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.pending {
		d.Stop()
	}
	b.pending = make(map[domain.CacheGroup]*debounce.Debouncer[domain.CacheGroup])
}

func (b *Bridge) fire(ctx context.Context, groups ...domain.CacheGroup) {
	for _, group := range groups {
		if b.window <= 0 {
			b.send(ctx, group)
			continue
		}
		b.debouncerFor(group).Set(group)
	}
}

func (b *Bridge) debouncerFor(group domain.CacheGroup) *debounce.Debouncer[domain.CacheGroup] {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.pending[group]
	if !ok {
		d = debounce.New(b.window, func(g domain.CacheGroup) {
			// The originating request may be long gone by the time a
			// coalesced signal fires.
			b.send(context.Background(), g)
		})
		b.pending[group] = d
	}
	return d
}

// send is fire-and-forget: the mutation already committed, so a failed
// invalidation is logged and swallowed, never surfaced to the caller.
func (b *Bridge) send(ctx context.Context, group domain.CacheGroup) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	if err := b.invalidator.Invalidate(sendCtx, group); err != nil {
		b.log.Warn("cache_invalidation_failed", "group", string(group), "error", err)
		return
	}
	if b.observe != nil {
		b.observe(group)
	}
}
