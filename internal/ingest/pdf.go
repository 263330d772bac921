package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFAdapter extracts text from PDF bytes, one segment per page, so every
// chunk downstream keeps the page it started on.
type PDFAdapter struct{}

// NewPDFAdapter creates a PDF adapter.
func NewPDFAdapter() *PDFAdapter { return &PDFAdapter{} }

// Kind returns KindPDF.
func (*PDFAdapter) Kind() Kind { return KindPDF }

// Normalize extracts per-page text with "p.<n>" locators (1-based).
// Pages without extractable text are skipped; a document where no page
// yields text is reported as ErrEmptyContent.
func (*PDFAdapter) Normalize(ctx context.Context, src Source) (*Normalized, error) {
	reader, err := pdf.NewReader(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	var segments []Segment
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page should not lose the rest of the
			// document; the page number gap stays visible in the locators.
			continue
		}

		text = normalizeNewlines(strings.TrimSpace(text))
		if text == "" {
			continue
		}

		segments = append(segments, Segment{
			Text:    text,
			Locator: fmt.Sprintf("p.%d", i),
		})
	}

	if len(segments) == 0 {
		return nil, ErrEmptyContent
	}

	return &Normalized{Segments: segments}, nil
}
