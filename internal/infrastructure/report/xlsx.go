// Package report renders upload-history rows as an XLSX workbook for the
// product's export button.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/avolkov/docstream/internal/core/domain"
)

const sheetName = "Uploads"

var headers = []any{
	"ID", "Filename", "Media type", "Size (bytes)", "Status", "Document ID", "Error", "Created", "Finished",
}

// WriteWorkbook streams a single-sheet workbook of entries to w.
func WriteWorkbook(entries []domain.HistoryEntry, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("compute row cell: %w", err)
		}
		row := []any{
			entry.ID,
			entry.Filename,
			entry.MediaType,
			entry.SizeBytes,
			string(entry.Status),
			entry.DocumentID,
			entry.Error,
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.FinishedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
