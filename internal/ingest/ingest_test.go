package ingest

import (
	"context"
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"text", KindText, false},
		{"pdf", KindPDF, false},
		{"csv", KindCSV, false},
		{"web", KindWeb, false},
		{"docx", "", true},
		{"", "", true},
		{"TEXT", "", true}, // kinds are lowercase, no fuzzy matching
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedKind) {
					t.Errorf("ParseKind(%q) error = %v, want ErrUnsupportedKind", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegistry_ForKind(t *testing.T) {
	reg := NewRegistry(NewWebAdapter())

	for _, kind := range []Kind{KindText, KindPDF, KindCSV, KindWeb} {
		adapter, err := reg.ForKind(kind)
		if err != nil {
			t.Fatalf("ForKind(%q) error: %v", kind, err)
		}
		if adapter.Kind() != kind {
			t.Errorf("ForKind(%q) returned adapter for %q", kind, adapter.Kind())
		}
	}

	if _, err := reg.ForKind("markdown"); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("ForKind(markdown) error = %v, want ErrUnsupportedKind", err)
	}
}

func TestTextAdapter(t *testing.T) {
	adapter := NewTextAdapter()
	ctx := context.Background()

	t.Run("single segment passthrough", func(t *testing.T) {
		got, err := adapter.Normalize(ctx, Source{Data: []byte("hello world")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Segments) != 1 {
			t.Fatalf("got %d segments, want 1", len(got.Segments))
		}
		if got.Segments[0].Text != "hello world" {
			t.Errorf("text = %q", got.Segments[0].Text)
		}
		if got.Segments[0].Locator != "" {
			t.Errorf("plain text should have no locator, got %q", got.Segments[0].Locator)
		}
	})

	t.Run("normalizes line endings", func(t *testing.T) {
		got, err := adapter.Normalize(ctx, Source{Data: []byte("a\r\nb\rc")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Segments[0].Text != "a\nb\nc" {
			t.Errorf("text = %q, want a\\nb\\nc", got.Segments[0].Text)
		}
	})

	t.Run("blank input rejected", func(t *testing.T) {
		if _, err := adapter.Normalize(ctx, Source{Data: []byte("  \n ")}); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("error = %v, want ErrEmptyContent", err)
		}
	})
}

func TestPDFAdapter_InvalidBytes(t *testing.T) {
	adapter := NewPDFAdapter()

	_, err := adapter.Normalize(context.Background(), Source{Data: []byte("not a pdf")})
	if err == nil {
		t.Fatal("expected error for invalid pdf bytes")
	}
	if errors.Is(err, ErrEmptyContent) {
		t.Errorf("parse failure must be distinguishable from empty content, got %v", err)
	}
}
