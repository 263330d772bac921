// Package cmd implements the corpus command line interface.
//
// Following the pattern used by standard Go CLI tools, all application
// logic lives here and main.go stays a minimal entry point.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corpushq/corpus/internal/app"
	"github.com/corpushq/corpus/internal/config"
	"github.com/corpushq/corpus/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the entry point for the corpus CLI. It parses the
// subcommand, initializes the application, and dispatches.
func Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp(os.Stdout)
		return nil
	}

	// version and help work even when config is invalid.
	switch args[0] {
	case "version", "--version", "-v":
		return runVersion(os.Stdout)
	case "help", "--help", "-h":
		printHelp(os.Stdout)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	if err := checkRequiredEnv(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()

	switch args[0] {
	case "add":
		return runAdd(ctx, a, args[1:])
	case "add-url":
		return runAddURL(ctx, a, args[1:])
	case "ask":
		return runAsk(ctx, a, args[1:])
	case "docs":
		return runDocs(ctx, a, os.Stdout)
	case "rm":
		return runRemove(ctx, a, args[1:])
	default:
		printHelp(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// checkRequiredEnv verifies provider credentials before any network call.
func checkRequiredEnv(cfg *config.Config) error {
	if cfg.Provider != config.ProviderGemini {
		return nil
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The gemini provider requires an API key:")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Get your API key at: https://ai.google.dev/")
		return fmt.Errorf("GEMINI_API_KEY not set")
	}
	return nil
}
