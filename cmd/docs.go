package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/corpushq/corpus/internal/app"
)

// runDocs lists the indexed documents in insertion order.
func runDocs(ctx context.Context, a *app.App, w io.Writer) error {
	docs, err := a.Service.List(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "no documents indexed")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tSIZE\tADDED")
	for _, doc := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			doc.ID, doc.Name, doc.Kind,
			formatSize(doc.SizeBytes),
			doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// runRemove deletes a document and its chunks.
func runRemove(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: corpus rm <id>")
	}

	doc, err := a.Service.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.Service.Remove(ctx, doc.ID); err != nil {
		return err
	}
	fmt.Printf("removed %s (%s)\n", doc.Name, doc.ID)
	return nil
}

// formatSize renders a byte count in a compact human unit.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
