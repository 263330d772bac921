// Package ingest normalizes heterogeneous document sources (plain text, PDF,
// CSV, web pages) into a uniform text-plus-locator representation that the
// chunking and indexing pipeline consumes.
//
// Each source kind has one adapter. Adapters are selected by an exhaustive
// switch over the closed Kind enumeration, so adding a kind is a
// compile-time-checked extension point.
package ingest

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies a document source kind.
type Kind string

// The closed set of supported source kinds.
const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindCSV  Kind = "csv"
	KindWeb  Kind = "web"
)

// Sentinel errors for ingestion. Check with errors.Is.
var (
	// ErrUnsupportedKind indicates the source kind is not one of the
	// supported enumeration values.
	ErrUnsupportedKind = errors.New("unsupported source kind")

	// ErrEmptyContent indicates the source was read successfully but
	// contained no extractable text. Distinct from fetch/parse failures.
	ErrEmptyContent = errors.New("no extractable content")
)

// ParseKind validates a caller-supplied kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindText, KindPDF, KindCSV, KindWeb:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// Valid reports whether k is a member of the closed kind enumeration.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindPDF, KindCSV, KindWeb:
		return true
	}
	return false
}

// Source is the raw input handed to an adapter. Data carries file bytes for
// text/pdf/csv sources; URL addresses web sources.
type Source struct {
	Name string
	Kind Kind
	Data []byte
	URL  string
}

// Segment is one normalized unit of source text. Locator records where the
// segment came from within the source ("p.3" for a PDF page, "rows 1-20" for
// a CSV row group, empty for text and web sources).
type Segment struct {
	Text    string
	Locator string
}

// Normalized is the adapter output: the ordered segments plus an optional
// display-name override (web pages report their title).
type Normalized struct {
	Title    string
	Segments []Segment
}

// Adapter normalizes one source kind into segments.
type Adapter interface {
	Kind() Kind
	Normalize(ctx context.Context, src Source) (*Normalized, error)
}

// Registry holds one adapter per source kind.
type Registry struct {
	text Adapter
	pdf  Adapter
	csv  Adapter
	web  Adapter
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCSVRowGroup overrides the CSV adapter's row-group size.
func WithCSVRowGroup(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.csv = NewCSVAdapter(n)
		}
	}
}

// NewRegistry builds the default adapter set. The web adapter takes its HTTP
// client configuration from the caller so fetch timeouts stay configurable.
func NewRegistry(web *WebAdapter, opts ...RegistryOption) *Registry {
	r := &Registry{
		text: NewTextAdapter(),
		pdf:  NewPDFAdapter(),
		csv:  NewCSVAdapter(DefaultRowGroup),
		web:  web,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForKind returns the adapter for the given kind. The switch is exhaustive
// over the Kind enumeration; unknown kinds are rejected.
func (r *Registry) ForKind(kind Kind) (Adapter, error) {
	switch kind {
	case KindText:
		return r.text, nil
	case KindPDF:
		return r.pdf, nil
	case KindCSV:
		return r.csv, nil
	case KindWeb:
		return r.web, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}
