// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (CORPUS_ prefix, runtime override)
//  2. Config file (~/.corpus/config.yaml)
//  3. Default values
//
// Sensitive values (the database password) are never logged. Validation
// lives in validation.go and uses sentinel errors so callers can check
// failure categories with errors.Is.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Defaults for the retrieval pipeline.
const (
	// DefaultEmbedderModel is the default Gemini embedding model.
	// gemini-embedding-001 supports truncation to 768 dimensions, which is
	// what the pgvector schema expects.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultEmbedderDimension must match the vector(768) schema column.
	DefaultEmbedderDimension = 768

	// DefaultChunkSize is the maximum chunk size in runes.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the byte overlap between adjacent chunks.
	DefaultChunkOverlap = 200

	// DefaultTopK is the number of candidates retrieved per query.
	DefaultTopK = 5

	// DefaultSnippetLength bounds candidate previews.
	DefaultSnippetLength = 150

	// DefaultCSVRowGroup is the number of CSV rows per segment.
	DefaultCSVRowGroup = 20
)

// Config stores application configuration.
type Config struct {
	// AI provider and model configuration
	Provider          string  `mapstructure:"provider"`
	ModelName         string  `mapstructure:"model_name"`
	EmbedderModel     string  `mapstructure:"embedder_model"`
	EmbedderDimension int     `mapstructure:"embedder_dimension"`
	Temperature       float32 `mapstructure:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	OllamaHost        string  `mapstructure:"ollama_host"`

	// PostgreSQL connection (see storage.go for DSN helpers)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// Retrieval pipeline tuning
	ChunkSize     int `mapstructure:"chunk_size"`
	ChunkOverlap  int `mapstructure:"chunk_overlap"`
	TopK          int `mapstructure:"top_k"`
	SnippetLength int `mapstructure:"snippet_length"`
	CSVRowGroup   int `mapstructure:"csv_row_group"`

	// Deadlines for external calls
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	EmbedTimeout    time.Duration `mapstructure:"embed_timeout"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`

	// Embedding rate limit (requests per second, 0 = disabled)
	EmbedRateLimit float64 `mapstructure:"embed_rate_limit"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	// Observability (empty endpoint = tracing disabled)
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CORPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configDir, err := Dir()
	if err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
			// Missing file is fine: defaults plus env carry the config.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Dir returns the corpus configuration directory (~/.corpus), creating it
// when absent.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	dir := filepath.Join(home, ".corpus")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("embedder_dimension", DefaultEmbedderDimension)
	v.SetDefault("temperature", 0.3)
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("ollama_host", "http://localhost:11434")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "corpus")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_dbname", "corpus")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("snippet_length", DefaultSnippetLength)
	v.SetDefault("csv_row_group", DefaultCSVRowGroup)

	v.SetDefault("fetch_timeout", 30*time.Second)
	v.SetDefault("embed_timeout", 30*time.Second)
	v.SetDefault("generate_timeout", 2*time.Minute)
	v.SetDefault("embed_rate_limit", 10.0)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("otlp_endpoint", "")
}
