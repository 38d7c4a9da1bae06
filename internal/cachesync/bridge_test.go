package cachesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/avolkov/docstream/internal/core/domain"
)

type invalidatorFake struct {
	mu    sync.Mutex
	calls []domain.CacheGroup
	err   error
}

func (f *invalidatorFake) Invalidate(_ context.Context, group domain.CacheGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, group)
	return f.err
}

func (f *invalidatorFake) snapshot() []domain.CacheGroup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CacheGroup(nil), f.calls...)
}

func TestBlastRadiusPerMutation(t *testing.T) {
	tests := []struct {
		name string
		fire func(*Bridge, context.Context)
		want []domain.CacheGroup
	}{
		{"upload", (*Bridge).UploadCommitted, []domain.CacheGroup{domain.CacheDocuments, domain.CacheMetrics}},
		{"delete", (*Bridge).DocumentDeleted, []domain.CacheGroup{domain.CacheDocuments, domain.CacheMetrics}},
		{"reprocess", (*Bridge).ReprocessAccepted, []domain.CacheGroup{domain.CacheDocuments}},
		{"batch", (*Bridge).BatchAccepted, []domain.CacheGroup{domain.CacheDocuments, domain.CacheMetrics}},
		{"vendor", (*Bridge).VendorChanged, []domain.CacheGroup{domain.CacheVendors}},
		{"project", (*Bridge).ProjectChanged, []domain.CacheGroup{domain.CacheProjects}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &invalidatorFake{}
			bridge := NewBridge(fake, BridgeOptions{})
			tt.fire(bridge, context.Background())

			got := fake.snapshot()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestInvalidatorErrorIsSwallowed(t *testing.T) {
	fake := &invalidatorFake{err: errors.New("bus down")}
	bridge := NewBridge(fake, BridgeOptions{Logger: slog.Default()})

	// Must not panic or propagate; the mutation already committed.
	bridge.UploadCommitted(context.Background())

	if len(fake.snapshot()) != 2 {
		t.Fatalf("expected invalidation attempts despite error")
	}
}

func TestObserverSeesSuccessfulInvalidationsOnly(t *testing.T) {
	fake := &invalidatorFake{}
	var observed []domain.CacheGroup
	bridge := NewBridge(fake, BridgeOptions{
		Observe: func(g domain.CacheGroup) { observed = append(observed, g) },
	})

	bridge.VendorChanged(context.Background())
	if len(observed) != 1 || observed[0] != domain.CacheVendors {
		t.Fatalf("expected observed vendors invalidation, got %v", observed)
	}

	fake.err = errors.New("bus down")
	bridge.ProjectChanged(context.Background())
	if len(observed) != 1 {
		t.Fatalf("failed invalidation must not be observed, got %v", observed)
	}
}

func TestCoalescingWindowCollapsesBursts(t *testing.T) {
	fake := &invalidatorFake{}
	bridge := NewBridge(fake, BridgeOptions{CoalesceWindow: 60 * time.Millisecond})
	defer bridge.Close()

	// Ten committed uploads in rapid succession.
	for i := 0; i < 10; i++ {
		bridge.UploadCommitted(context.Background())
	}

	time.Sleep(250 * time.Millisecond)
	got := fake.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected one coalesced signal per group, got %v", got)
	}
	seen := map[domain.CacheGroup]bool{}
	for _, g := range got {
		seen[g] = true
	}
	if !seen[domain.CacheDocuments] || !seen[domain.CacheMetrics] {
		t.Fatalf("expected documents and metrics groups, got %v", got)
	}
}
