package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avolkov/docstream/internal/core/domain"
)

func TestWriteWorkbookRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	entries := []domain.HistoryEntry{
		{
			ID:         "invoice-1",
			Filename:   "invoice.pdf",
			MediaType:  "application/pdf",
			SizeBytes:  2048,
			Status:     domain.StatusCompleted,
			DocumentID: "doc-1",
			CreatedAt:  now,
			FinishedAt: now,
		},
		{
			ID:         "scan-2",
			Filename:   "scan.png",
			MediaType:  "image/png",
			SizeBytes:  512,
			Status:     domain.StatusError,
			Error:      "rejected by server",
			CreatedAt:  now,
			FinishedAt: now,
		},
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(entries, &buf); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	if err != nil || header != "ID" {
		t.Fatalf("unexpected header cell: %q (%v)", header, err)
	}
	filename, _ := f.GetCellValue(sheetName, "B2")
	if filename != "invoice.pdf" {
		t.Fatalf("unexpected filename cell: %q", filename)
	}
	status, _ := f.GetCellValue(sheetName, "E3")
	if status != "error" {
		t.Fatalf("unexpected status cell: %q", status)
	}
	errMsg, _ := f.GetCellValue(sheetName, "G3")
	if errMsg != "rejected by server" {
		t.Fatalf("unexpected error cell: %q", errMsg)
	}
}

func TestWriteWorkbookEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(nil, &buf); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty workbook")
	}
}
