package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpushq/corpus/internal/log"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	cfg := Config{
		Endpoint:    "",
		Environment: "test",
		ServiceName: "test-service",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg, log.NewNop())

	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
}

func TestSetupWithEndpoint(t *testing.T) {
	cfg := Config{
		Endpoint:    "localhost:4318",
		Environment: "test",
		ServiceName: "test-service",
	}

	ctx := context.Background()
	shutdown, err := Setup(ctx, cfg, log.NewNop())

	// Exporter creation is lazy, so an unreachable collector must not
	// fail startup.
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
}

func TestSetupDefaultServiceName(t *testing.T) {
	assert.Equal(t, "corpus", DefaultServiceName)
}
