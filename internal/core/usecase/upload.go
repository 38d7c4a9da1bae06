package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avolkov/docstream/internal/cachesync"
	"github.com/avolkov/docstream/internal/core/domain"
	"github.com/avolkov/docstream/internal/core/ports"
	"github.com/avolkov/docstream/internal/core/store"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultPollTimeout  = 2 * time.Minute
)

// UploadOrchestrator drives one file through validate, submit, await remote
// completion and finalize, emitting every state change into the task store.
// It never retries an upload on its own: a retry is a fresh admission with a
// fresh task id.
type UploadOrchestrator struct {
	uploads   *store.Store
	remote    ports.DocumentSubmitter
	notifier  ports.Notifier
	caches    *cachesync.Bridge
	validator *FileValidator

	history  ports.UploadHistory
	observer ports.UploadObserver
	log      *slog.Logger

	pollInterval time.Duration
	pollTimeout  time.Duration
}

type OrchestratorOptions struct {
	History      ports.UploadHistory
	Observer     ports.UploadObserver
	Logger       *slog.Logger
	PollInterval time.Duration
	PollTimeout  time.Duration
}

func NewUploadOrchestrator(
	uploads *store.Store,
	remote ports.DocumentSubmitter,
	notifier ports.Notifier,
	caches *cachesync.Bridge,
	validator *FileValidator,
	opts OrchestratorOptions,
) *UploadOrchestrator {
	if validator == nil {
		validator = NewFileValidator(nil, 0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &UploadOrchestrator{
		uploads:      uploads,
		remote:       remote,
		notifier:     notifier,
		caches:       caches,
		validator:    validator,
		history:      opts.History,
		observer:     opts.Observer,
		log:          logger,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// SubmitOne admits a single file. Validation failures are reported and
// returned without creating a task or touching the remote. After the task is
// admitted, any failure is recorded as the task's error state, notified, and
// re-raised to the caller.
func (o *UploadOrchestrator) SubmitOne(ctx context.Context, upload domain.FileUpload) (*domain.UploadResult, error) {
	if err := o.validator.Validate(upload.Meta); err != nil {
		o.notifier.Notify(ctx, domain.NotifyError, fmt.Sprintf("%s: %v", displayName(upload.Meta), err))
		return nil, err
	}

	id := o.uploads.Create(upload.Meta)
	start := time.Now()
	if o.observer != nil {
		o.observer.UploadStarted()
	}

	result, err := o.run(ctx, id, upload)
	if err != nil {
		o.uploads.Transition(id, domain.StatusError, nil, err.Error())
		o.finish(ctx, id, domain.StatusError, start, upload.Meta.Size)
		o.notifier.Notify(ctx, domain.NotifyError, fmt.Sprintf("%s failed: %v", upload.Meta.Name, err))
		return nil, err
	}

	o.uploads.Transition(id, domain.StatusCompleted, result, "")
	o.finish(ctx, id, domain.StatusCompleted, start, upload.Meta.Size)
	o.caches.UploadCommitted(ctx)
	o.notifier.Notify(ctx, domain.NotifySuccess, fmt.Sprintf("%s uploaded", upload.Meta.Name))
	return result, nil
}

// SubmitMany admits every file concurrently with all-settle semantics: it
// waits for every outcome, and one file's failure never cancels or blocks its
// siblings. Per-file failures are already recorded in the store and notified,
// so nothing is returned.
func (o *UploadOrchestrator) SubmitMany(ctx context.Context, uploads []domain.FileUpload) {
	var wg sync.WaitGroup
	for _, upload := range uploads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.SubmitOne(ctx, upload); err != nil {
				o.log.Warn("upload_failed", "file", upload.Meta.Name, "error", err)
			}
		}()
	}
	wg.Wait()
}

// DeleteDocument delegates a delete to the remote and invalidates the
// affected cache groups once it commits.
func (o *UploadOrchestrator) DeleteDocument(ctx context.Context, documentID string) error {
	if err := o.remote.Delete(ctx, documentID); err != nil {
		o.notifier.Notify(ctx, domain.NotifyError, fmt.Sprintf("delete failed: %v", err))
		return fmt.Errorf("delete document: %w", err)
	}
	o.caches.DocumentDeleted(ctx)
	o.notifier.Notify(ctx, domain.NotifySuccess, "document deleted")
	return nil
}

// ReprocessDocument asks the remote to re-run classification for one document.
func (o *UploadOrchestrator) ReprocessDocument(ctx context.Context, documentID string) error {
	if err := o.remote.Reprocess(ctx, documentID); err != nil {
		o.notifier.Notify(ctx, domain.NotifyError, fmt.Sprintf("reprocess failed: %v", err))
		return fmt.Errorf("reprocess document: %w", err)
	}
	o.caches.ReprocessAccepted(ctx)
	return nil
}

// ReprocessBatch asks the remote to re-run classification for many documents.
func (o *UploadOrchestrator) ReprocessBatch(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	if err := o.remote.ReprocessBatch(ctx, documentIDs); err != nil {
		o.notifier.Notify(ctx, domain.NotifyError, fmt.Sprintf("batch reprocess failed: %v", err))
		return fmt.Errorf("reprocess batch: %w", err)
	}
	o.caches.BatchAccepted(ctx)
	return nil
}

func (o *UploadOrchestrator) run(ctx context.Context, id string, upload domain.FileUpload) (*domain.UploadResult, error) {
	o.uploads.Transition(id, domain.StatusUploading, nil, "")

	result, err := o.remote.Submit(ctx, upload.Meta, upload.Body, func(percent int) {
		o.uploads.SetProgress(id, percent)
	})
	if err != nil {
		return nil, fmt.Errorf("submit upload: %w", err)
	}

	o.uploads.Transition(id, domain.StatusProcessing, nil, "")

	if err := o.awaitCompletion(ctx, result.DocumentID); err != nil {
		return nil, err
	}
	return result, nil
}

// awaitCompletion polls the remote until it reports the document ready or
// failed. Transient poll errors are tolerated until the deadline.
func (o *UploadOrchestrator) awaitCompletion(ctx context.Context, documentID string) error {
	deadline := time.Now().Add(o.pollTimeout)
	for {
		doc, err := o.remote.Status(ctx, documentID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.log.Warn("status_poll_failed", "document_id", documentID, "error", err)
		} else {
			switch doc.Status {
			case domain.RemoteReady:
				return nil
			case domain.RemoteFailed:
				message := doc.Error
				if message == "" {
					message = "processing failed"
				}
				return domain.WrapError(domain.ErrRemoteRejected, "remote processing", errors.New(message))
			}
		}

		if time.Now().After(deadline) {
			return domain.WrapError(domain.ErrTemporary, "await processing",
				fmt.Errorf("document %s not finished after %s", documentID, o.pollTimeout))
		}
		timer := time.NewTimer(o.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (o *UploadOrchestrator) finish(ctx context.Context, id string, status domain.UploadStatus, start time.Time, bytes int64) {
	if o.observer != nil {
		o.observer.UploadFinished(status, time.Since(start), bytes)
	}
	if o.history == nil {
		return
	}
	task, ok := o.uploads.Get(id)
	if !ok {
		return
	}
	if err := o.history.RecordOutcome(ctx, task); err != nil {
		o.log.Warn("history_record_failed", "task_id", id, "error", err)
	}
}

func displayName(meta domain.FileMeta) string {
	if meta.Name == "" {
		return "(unnamed file)"
	}
	return meta.Name
}
