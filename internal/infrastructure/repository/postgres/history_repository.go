package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avolkov/docstream/internal/core/domain"
)

// HistoryRepository persists terminal upload outcomes. The live queue stays
// in memory; this table is the durable audit trail behind reporting.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS upload_history (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	media_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	status TEXT NOT NULL,
	document_id TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)
`)
	if err != nil {
		return fmt.Errorf("ensure upload_history schema: %w", err)
	}
	return nil
}

// RecordOutcome stores a terminal task. Non-terminal tasks are skipped so a
// caller can feed every transition without filtering first.
func (r *HistoryRepository) RecordOutcome(ctx context.Context, task domain.UploadTask) error {
	if !task.Status.Terminal() {
		return nil
	}
	documentID := ""
	if task.Result != nil {
		documentID = task.Result.DocumentID
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO upload_history (id, filename, media_type, size_bytes, status, document_id, error, created_at, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING
`,
		task.ID,
		task.File.Name,
		task.File.MediaType,
		task.File.Size,
		string(task.Status),
		documentID,
		task.Error,
		task.CreatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record upload outcome: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, media_type, size_bytes, status, document_id, error, created_at, finished_at
FROM upload_history
ORDER BY finished_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list upload history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var entry domain.HistoryEntry
		var status string
		err := rows.Scan(
			&entry.ID,
			&entry.Filename,
			&entry.MediaType,
			&entry.SizeBytes,
			&status,
			&entry.DocumentID,
			&entry.Error,
			&entry.CreatedAt,
			&entry.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan upload history row: %w", err)
		}
		entry.Status = domain.UploadStatus(status)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload history: %w", err)
	}
	return out, nil
}
