package ports

import (
	"context"

	"github.com/avolkov/docstream/internal/core/domain"
)

// UploadManager is the inbound contract for upload orchestration. This is
// what the view-facing adapter calls into.
type UploadManager interface {
	SubmitOne(ctx context.Context, upload domain.FileUpload) (*domain.UploadResult, error)
	SubmitMany(ctx context.Context, uploads []domain.FileUpload)
}

// UploadReader is the inbound read model over the upload queue.
type UploadReader interface {
	Snapshot() []domain.UploadTask
	Get(id string) (domain.UploadTask, bool)
	Stats() domain.UploadStats
	IsUploading() bool
}

// DocumentMutator is the inbound contract for post-upload document mutations
// delegated to the remote service.
type DocumentMutator interface {
	DeleteDocument(ctx context.Context, documentID string) error
	ReprocessDocument(ctx context.Context, documentID string) error
	ReprocessBatch(ctx context.Context, documentIDs []string) error
}
