package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/corpushq/corpus/internal/app"
	"github.com/corpushq/corpus/internal/rag"
)

// runAsk answers a question from the indexed documents. With --stream the
// answer prints incrementally as the model produces it.
func runAsk(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	stream := fs.Bool("stream", false, "print the answer incrementally")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return fmt.Errorf("usage: corpus ask [--stream] <question>")
	}

	if *stream {
		return askStream(ctx, a, query)
	}

	answer, err := a.Service.Query(ctx, query)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	printSources(answer.Sources, answer.Confidence)
	return nil
}

func askStream(ctx context.Context, a *app.App, query string) error {
	stream, err := a.Service.QueryStream(ctx, query)
	if err != nil {
		return err
	}

	var (
		sources    []rag.Source
		confidence float64
	)
	for ev := range stream {
		switch ev.Type {
		case rag.EventFragment:
			fmt.Print(ev.Fragment)
		case rag.EventSources:
			sources = ev.Sources
		case rag.EventConfidence:
			confidence = ev.Confidence
		case rag.EventError:
			fmt.Println()
			fmt.Fprintf(os.Stderr, "error: %v\n", ev.Err)
			return nil
		case rag.EventEnd:
		}
	}
	if ctx.Err() != nil {
		fmt.Println()
		return nil
	}

	fmt.Println()
	printSources(sources, confidence)
	return nil
}

func printSources(sources []rag.Source, confidence float64) {
	if len(sources) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Sources:")
	for i, src := range sources {
		loc := ""
		if src.Locator != "" {
			loc = ", " + src.Locator
		}
		fmt.Printf("  [%d] %s%s (score %.1f)\n", i+1, src.DocumentName, loc, src.Score)
	}
	fmt.Printf("Confidence: %.2f\n", confidence)
}
