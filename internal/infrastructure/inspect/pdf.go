// Package inspect extracts lightweight display metadata from candidate files
// before admission. Inspection failures are never fatal to an upload.
package inspect

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

type PDFInspector struct{}

func NewPDFInspector() *PDFInspector {
	return &PDFInspector{}
}

// PageCount parses the PDF cross-reference table and returns the number of
// pages. Encrypted or malformed documents return an error.
func (*PDFInspector) PageCount(r io.ReaderAt, size int64) (int, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return reader.NumPage(), nil
}
