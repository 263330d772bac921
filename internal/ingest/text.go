package ingest

import (
	"context"
	"strings"
)

// TextAdapter passes plain text through as a single segment.
type TextAdapter struct{}

// NewTextAdapter creates a plain text adapter.
func NewTextAdapter() *TextAdapter { return &TextAdapter{} }

// Kind returns KindText.
func (*TextAdapter) Kind() Kind { return KindText }

// Normalize emits the input as one segment with normalized line endings.
func (*TextAdapter) Normalize(_ context.Context, src Source) (*Normalized, error) {
	text := normalizeNewlines(string(src.Data))
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	return &Normalized{
		Segments: []Segment{{Text: text}},
	}, nil
}

// normalizeNewlines converts CRLF and lone CR line endings to LF so the
// chunker's paragraph detection behaves the same for all inputs.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
