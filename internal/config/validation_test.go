package config

import (
	"errors"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Provider:          ProviderGemini,
		ModelName:         "gemini-2.5-flash",
		EmbedderModel:     DefaultEmbedderModel,
		EmbedderDimension: DefaultEmbedderDimension,
		Temperature:       0.3,
		MaxTokens:         2048,
		PostgresHost:      "localhost",
		PostgresPort:      5432,
		PostgresUser:      "corpus",
		PostgresDBName:    "corpus",
		PostgresSSLMode:   "disable",
		ChunkSize:         1000,
		ChunkOverlap:      200,
		TopK:              5,
		SnippetLength:     150,
		CSVRowGroup:       20,
		FetchTimeout:      30 * time.Second,
		EmbedTimeout:      30 * time.Second,
		GenerateTimeout:   2 * time.Minute,
		LogLevel:          "info",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"valid ollama", func(c *Config) { c.Provider = ProviderOllama }, nil},
		{"unknown provider", func(c *Config) { c.Provider = "openai" }, ErrInvalidProvider},
		{"empty provider", func(c *Config) { c.Provider = "" }, ErrInvalidProvider},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"temperature boundary", func(c *Config) { c.Temperature = 2 }, nil},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, ErrInvalidMaxTokens},
		{"wrong embedder dimension", func(c *Config) { c.EmbedderDimension = 1536 }, ErrInvalidEmbedderDimension},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidChunking},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, ErrInvalidChunking},
		{"overlap equals chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, ErrInvalidChunking},
		{"zero top k", func(c *Config) { c.TopK = 0 }, ErrInvalidTopK},
		{"zero snippet length", func(c *Config) { c.SnippetLength = 0 }, ErrInvalidChunking},
		{"zero csv row group", func(c *Config) { c.CSVRowGroup = 0 }, ErrInvalidChunking},
		{"port too low", func(c *Config) { c.PostgresPort = 0 }, ErrInvalidPostgresPort},
		{"port too high", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgresPort},
		{"bad sslmode", func(c *Config) { c.PostgresSSLMode = "maybe" }, ErrInvalidSSLMode},
		{"verify-full sslmode", func(c *Config) { c.PostgresSSLMode = "verify-full" }, nil},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, ErrInvalidLogLevel},
		{"debug log level", func(c *Config) { c.LogLevel = "debug" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want errors.Is(%v)", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "warn"
	if got := cfg.SlogLevel().String(); got != "WARN" {
		t.Errorf("SlogLevel() = %s, want WARN", got)
	}
}
