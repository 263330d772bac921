package app

import (
	"context"
	"testing"

	"github.com/corpushq/corpus/internal/config"
	"github.com/corpushq/corpus/internal/log"
)

func TestCloseOnPartialApp(t *testing.T) {
	// Setup cleans up with Close on failure, so Close must tolerate a
	// container where nothing was initialized yet.
	a := &App{}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() on empty app = %v", err)
	}

	a = &App{Logger: log.NewNop(), otelCleanup: func() {}}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() on partial app = %v", err)
	}
}

func TestProvideOtelShutdownDisabled(t *testing.T) {
	cfg := &config.Config{OTLPEndpoint: ""}

	cleanup := provideOtelShutdown(context.Background(), cfg, log.NewNop())
	if cleanup == nil {
		t.Fatal("cleanup func is nil")
	}
	cleanup()
}
