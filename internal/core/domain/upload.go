package domain

import (
	"io"
	"time"
)

type UploadStatus string

const (
	StatusPending    UploadStatus = "pending"
	StatusUploading  UploadStatus = "uploading"
	StatusProcessing UploadStatus = "processing"
	StatusCompleted  UploadStatus = "completed"
	StatusError      UploadStatus = "error"
)

// Terminal reports whether no further transitions are valid out of s.
func (s UploadStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

type FileMeta struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MediaType string `json:"media_type"`
	PageCount int    `json:"page_count,omitempty"`
}

// FileUpload is a candidate file together with its content stream.
type FileUpload struct {
	Meta FileMeta
	Body io.Reader
}

// UploadResult is the remote service's acceptance payload for one document.
type UploadResult struct {
	DocumentID string  `json:"document_id"`
	Category   string  `json:"category,omitempty"`
	Vendor     string  `json:"vendor,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// UploadTask is one tracked upload attempt. Exactly one of Result/Error is
// populated once Status is terminal, neither before.
type UploadTask struct {
	ID        string        `json:"id"`
	File      FileMeta      `json:"file"`
	Status    UploadStatus  `json:"status"`
	Progress  int           `json:"progress"`
	Result    *UploadResult `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type UploadStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Processing int `json:"processing"`
	Errors     int `json:"errors"`
}

// HistoryEntry is the persisted audit record of a terminal upload outcome.
type HistoryEntry struct {
	ID         string       `json:"id"`
	Filename   string       `json:"filename"`
	MediaType  string       `json:"media_type"`
	SizeBytes  int64        `json:"size_bytes"`
	Status     UploadStatus `json:"status"`
	DocumentID string       `json:"document_id,omitempty"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt time.Time    `json:"finished_at"`
}
