package ports

import (
	"context"
	"io"
	"time"

	"github.com/avolkov/docstream/internal/core/domain"
)

// DocumentSubmitter is the remote classification service boundary.
type DocumentSubmitter interface {
	// Submit uploads one file and returns the remote acceptance payload.
	// onProgress is called with 0..100 percentages, non-decreasing, zero or
	// more times before Submit returns.
	Submit(ctx context.Context, meta domain.FileMeta, body io.Reader, onProgress func(percent int)) (*domain.UploadResult, error)
	Status(ctx context.Context, documentID string) (domain.RemoteDocument, error)
	Delete(ctx context.Context, documentID string) error
	Reprocess(ctx context.Context, documentID string) error
	ReprocessBatch(ctx context.Context, documentIDs []string) error
}

// Notifier delivers fire-and-forget user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, kind domain.NotificationKind, text string)
}

// CacheInvalidator signals an external cache layer that a named group of
// server-derived data is stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, group domain.CacheGroup) error
}

// UploadHistory persists terminal upload outcomes for audit and reporting.
type UploadHistory interface {
	RecordOutcome(ctx context.Context, task domain.UploadTask) error
	ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// UploadObserver receives lifecycle telemetry for in-flight uploads.
type UploadObserver interface {
	UploadStarted()
	UploadFinished(status domain.UploadStatus, duration time.Duration, bytes int64)
}
