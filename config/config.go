// Package config reads all service settings from the environment at
// startup. There is no runtime reconfiguration; a restart picks up
// changes.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Provider selects the generation backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Backend selects the vector index implementation.
type Backend string

const (
	BackendPGVector Backend = "pgvector"
	BackendMemory   Backend = "memory"
)

// Config holds every environment-sourced setting.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// Generation
	Provider        Provider `env:"GENERATION_PROVIDER" envDefault:"openai"`
	OpenAIModel     string   `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AnthropicModel  string   `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	AnthropicAPIKey string   `env:"ANTHROPIC_API_KEY"`
	// OPENAI_API_KEY is read by the OpenAI SDK itself.

	// Retrieval
	VectorBackend Backend `env:"VECTOR_BACKEND" envDefault:"pgvector"`
	DatabaseURL   string  `env:"DATABASE_URL"`
	IndexTable    string  `env:"INDEX_TABLE" envDefault:"document_chunks"`
	EmbeddingDim  int     `env:"EMBEDDING_DIM" envDefault:"1536"`
	TopK          int     `env:"RETRIEVAL_TOP_K" envDefault:"3"`

	// Ingestion
	DocsDir   string `env:"DOCS_DIR" envDefault:"docs"`
	ChunkSize int    `env:"CHUNK_SIZE" envDefault:"500"`
	BatchSize int    `env:"INGEST_BATCH_SIZE" envDefault:"100"`

	// Orchestration
	HistoryWindow     int           `env:"HISTORY_WINDOW" envDefault:"2"`
	RetrievalTimeout  time.Duration `env:"RETRIEVAL_TIMEOUT" envDefault:"10s"`
	PluginTimeout     time.Duration `env:"PLUGIN_TIMEOUT" envDefault:"10s"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// New parses the environment into a Config.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
	switch cfg.VectorBackend {
	case BackendPGVector, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
	if cfg.VectorBackend == BackendPGVector && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required with the pgvector backend")
	}
	return cfg, nil
}
