// Package observability provides OpenTelemetry tracing for the pipeline.
//
// Traces are exported over OTLP HTTP to a local collector or agent. The
// exporter attaches to Genkit's TracerProvider, so model calls and flows
// appear in the same trace tree as our own spans.
//
// Tracing is opt-in: an empty endpoint disables it entirely, and an
// exporter that fails to start degrades to a no-op rather than blocking
// startup.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/corpushq/corpus/internal/log"
)

// Config for OTLP tracing setup.
type Config struct {
	// Endpoint is the OTLP HTTP collector address, host:port. Empty
	// disables tracing.
	Endpoint string
	// Environment is the deployment environment tag (dev, staging, prod).
	Environment string
	// ServiceName identifies this service in the trace backend.
	ServiceName string
}

// DefaultServiceName is used when Config.ServiceName is empty.
const DefaultServiceName = "corpus"

// Setup registers an OTLP exporter with Genkit's TracerProvider and
// returns a shutdown function that flushes pending spans. With an empty
// endpoint it returns a no-op shutdown.
func Setup(ctx context.Context, cfg Config, logger log.Logger) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if cfg.Endpoint == "" {
		return noop, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	// Genkit's TracerProvider reads these at span creation time.
	_ = os.Setenv("OTEL_SERVICE_NAME", serviceName)
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("failed to create trace exporter, tracing disabled", slog.Any("error", err))
		return noop, nil
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", serviceName,
		"environment", cfg.Environment)

	return tracing.TracerProvider().Shutdown, nil
}
