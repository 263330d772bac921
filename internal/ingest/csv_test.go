package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCSVAdapter_HeaderAwareRows(t *testing.T) {
	adapter := NewCSVAdapter(10)

	data := "city,country\nParis,France\nTokyo,Japan\n"
	got, err := adapter.Normalize(context.Background(), Source{Data: []byte(data)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(got.Segments))
	}

	seg := got.Segments[0]
	if seg.Locator != "rows 1-2" {
		t.Errorf("locator = %q, want rows 1-2", seg.Locator)
	}
	if !strings.Contains(seg.Text, "city: Paris") || !strings.Contains(seg.Text, "country: France") {
		t.Errorf("row rendering lost header names: %q", seg.Text)
	}
}

func TestCSVAdapter_RowGrouping(t *testing.T) {
	adapter := NewCSVAdapter(3)

	var b strings.Builder
	b.WriteString("id,value\n")
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&b, "%d,item%d\n", i, i)
	}

	got, err := adapter.Normalize(context.Background(), Source{Data: []byte(b.String())})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLocators := []string{"rows 1-3", "rows 4-6", "rows 7-7"}
	if len(got.Segments) != len(wantLocators) {
		t.Fatalf("got %d segments, want %d", len(got.Segments), len(wantLocators))
	}
	for i, want := range wantLocators {
		if got.Segments[i].Locator != want {
			t.Errorf("segment %d locator = %q, want %q", i, got.Segments[i].Locator, want)
		}
	}

	// Rows from different groups must not share a segment.
	if strings.Contains(got.Segments[0].Text, "item4") {
		t.Error("row 4 leaked into the first group")
	}
}

func TestCSVAdapter_RaggedRows(t *testing.T) {
	adapter := NewCSVAdapter(10)

	data := "a,b\n1,2,3\n4\n"
	got, err := adapter.Normalize(context.Background(), Source{Data: []byte(data)})
	if err != nil {
		t.Fatalf("ragged rows should be tolerated: %v", err)
	}

	text := got.Segments[0].Text
	if !strings.Contains(text, "column 3: 3") {
		t.Errorf("extra column should get a positional name: %q", text)
	}
}

func TestCSVAdapter_EmptyInputs(t *testing.T) {
	adapter := NewCSVAdapter(10)
	ctx := context.Background()

	t.Run("no data at all", func(t *testing.T) {
		if _, err := adapter.Normalize(ctx, Source{Data: nil}); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("error = %v, want ErrEmptyContent", err)
		}
	})

	t.Run("header only", func(t *testing.T) {
		if _, err := adapter.Normalize(ctx, Source{Data: []byte("a,b,c\n")}); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("error = %v, want ErrEmptyContent", err)
		}
	})
}
