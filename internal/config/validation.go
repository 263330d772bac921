package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Validation sentinel errors.
var (
	ErrInvalidProvider          = errors.New("invalid provider")
	ErrInvalidTemperature       = errors.New("temperature must be between 0 and 2")
	ErrInvalidMaxTokens         = errors.New("max_tokens must be positive")
	ErrInvalidEmbedderDimension = errors.New("embedder_dimension must match the index schema")
	ErrInvalidChunking          = errors.New("invalid chunking parameters")
	ErrInvalidTopK              = errors.New("top_k must be positive")
	ErrInvalidPostgresPort      = errors.New("postgres_port must be between 1 and 65535")
	ErrInvalidSSLMode           = errors.New("invalid postgres_sslmode")
	ErrInvalidLogLevel          = errors.New("invalid log_level")
	ErrInvalidDatabaseURL       = errors.New("invalid DATABASE_URL")
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for consistency. It returns the first
// failure wrapped around its sentinel error.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOllama:
	default:
		return fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidProvider, c.Provider, ProviderGemini, ProviderOllama)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: got %g", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}
	if c.EmbedderDimension != DefaultEmbedderDimension {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidEmbedderDimension, c.EmbedderDimension, DefaultEmbedderDimension)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", ErrInvalidChunking, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be less than chunk_size %d", ErrInvalidChunking, c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopK, c.TopK)
	}
	if c.SnippetLength <= 0 {
		return fmt.Errorf("%w: snippet_length must be positive, got %d", ErrInvalidChunking, c.SnippetLength)
	}
	if c.CSVRowGroup <= 0 {
		return fmt.Errorf("%w: csv_row_group must be positive, got %d", ErrInvalidChunking, c.CSVRowGroup)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidSSLMode, c.PostgresSSLMode)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// SlogLevel converts the configured log level to a slog.Level. Validate
// must have succeeded first.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
