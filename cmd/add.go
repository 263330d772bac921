package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/corpushq/corpus/internal/app"
)

// runAdd indexes local files. Each path is ingested independently so one
// bad file does not stop the rest; the first failure is reported after
// all paths were attempted.
func runAdd(ctx context.Context, a *app.App, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("usage: corpus add <path>...")
	}

	var firstErr error
	for _, path := range paths {
		doc, err := a.Service.AddFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Printf("indexed %s (%s, id %s)\n", doc.Name, doc.Kind, doc.ID)
	}
	return firstErr
}

// runAddURL fetches and indexes web pages.
func runAddURL(ctx context.Context, a *app.App, urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("usage: corpus add-url <url>...")
	}

	var firstErr error
	for _, rawURL := range urls {
		doc, err := a.Service.AddURL(ctx, rawURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", rawURL, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Printf("indexed %s (id %s)\n", doc.Name, doc.ID)
	}
	return firstErr
}
