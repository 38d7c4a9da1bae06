package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avolkov/docstream/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*HistoryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &HistoryRepository{db: db}, mock, func() { _ = db.Close() }
}

func completedTask() domain.UploadTask {
	return domain.UploadTask{
		ID:        "invoice-abc123",
		File:      domain.FileMeta{Name: "invoice.pdf", Size: 2048, MediaType: "application/pdf"},
		Status:    domain.StatusCompleted,
		Progress:  100,
		Result:    &domain.UploadResult{DocumentID: "doc-1"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestRecordOutcomeInsertsTerminalTask(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	task := completedTask()
	mock.ExpectExec("INSERT INTO upload_history").
		WithArgs(
			task.ID,
			"invoice.pdf",
			"application/pdf",
			int64(2048),
			string(domain.StatusCompleted),
			"doc-1",
			"",
			task.CreatedAt,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordOutcome(context.Background(), task); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordOutcomeSkipsNonTerminalTask(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	task := completedTask()
	task.Status = domain.StatusUploading
	task.Result = nil

	if err := repo.RecordOutcome(context.Background(), task); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no SQL expected for non-terminal task: %v", err)
	}
}

func TestRecordOutcomeWrapsSQLError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO upload_history").
		WillReturnError(errors.New("connection refused"))

	err := repo.RecordOutcome(context.Background(), completedTask())
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecentScansEntries(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "filename", "media_type", "size_bytes", "status", "document_id", "error", "created_at", "finished_at",
	}).
		AddRow("a-1", "a.pdf", "application/pdf", int64(100), "completed", "doc-a", "", now, now).
		AddRow("b-1", "b.png", "image/png", int64(200), "error", "", "rejected", now, now)

	mock.ExpectQuery("SELECT id, filename, media_type, size_bytes, status").
		WithArgs(50).
		WillReturnRows(rows)

	entries, err := repo.ListRecent(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != domain.StatusCompleted || entries[0].DocumentID != "doc-a" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Status != domain.StatusError || entries[1].Error != "rejected" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
