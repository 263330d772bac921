package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// DefaultRowGroup is the default number of data rows per segment.
const DefaultRowGroup = 20

// CSVAdapter turns CSV rows into segments. The first row is treated as the
// header; each data row is rendered as "header: value" pairs so column
// meaning survives embedding. Rows are grouped into segments of at most
// groupSize rows and never merged across a group boundary, so every chunk
// built from a segment keeps its row-range locator.
type CSVAdapter struct {
	groupSize int
}

// NewCSVAdapter creates a CSV adapter with the given row-group size.
func NewCSVAdapter(groupSize int) *CSVAdapter {
	if groupSize <= 0 {
		groupSize = DefaultRowGroup
	}
	return &CSVAdapter{groupSize: groupSize}
}

// Kind returns KindCSV.
func (*CSVAdapter) Kind() Kind { return KindCSV }

// Normalize parses the CSV and emits one segment per row group with a
// "rows a-b" locator (1-based data row numbers).
func (a *CSVAdapter) Normalize(ctx context.Context, src Source) (*Normalized, error) {
	reader := csv.NewReader(bytes.NewReader(src.Data))
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyContent
	}
	if err != nil {
		return nil, fmt.Errorf("parsing csv header: %w", err)
	}

	var (
		segments  []Segment
		group     []string
		rowNum    int // 1-based data row counter
		groupFrom int
	)

	flush := func() {
		if len(group) == 0 {
			return
		}
		segments = append(segments, Segment{
			Text:    strings.Join(group, "\n"),
			Locator: fmt.Sprintf("rows %d-%d", groupFrom, rowNum),
		})
		group = nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv row %d: %w", rowNum+1, err)
		}

		rowNum++
		if len(group) == 0 {
			groupFrom = rowNum
		}
		group = append(group, renderRow(header, record))
		if len(group) >= a.groupSize {
			flush()
		}
	}
	flush()

	if len(segments) == 0 {
		return nil, ErrEmptyContent
	}

	return &Normalized{Segments: segments}, nil
}

// renderRow formats one data row as "header: value" pairs. Columns beyond
// the header width fall back to positional names.
func renderRow(header, record []string) string {
	pairs := make([]string, 0, len(record))
	for i, field := range record {
		name := fmt.Sprintf("column %d", i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			name = strings.TrimSpace(header[i])
		}
		pairs = append(pairs, name+": "+strings.TrimSpace(field))
	}
	return strings.Join(pairs, ", ")
}
