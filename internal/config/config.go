// Package config loads engine configuration from a TOML file.
//
// Defaults are applied for anything the file omits, so an absent file is a
// fully working local setup (Ollama backend, ~/.kbase data directory).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
)

// Default configuration values.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
	DefaultBatchSize = 64
	DefaultProvider  = "ollama"
)

// Config is the engine configuration.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Ingest    IngestConfig    `toml:"ingest"`
}

// StorageConfig locates persisted tenant indexes.
type StorageConfig struct {
	// DataDir is the root directory for per-tenant index state.
	// Defaults to ~/.kbase/data.
	DataDir string `toml:"data_dir"`
}

// ChunkingConfig holds document chunking parameters.
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size"`

	// Overlap is a pointer so an explicit 0 stays distinguishable from an
	// omitted value. Load always leaves it non-nil.
	Overlap *int `toml:"overlap"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model overrides the provider's default embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key for
	// remote providers. Defaults to OPENAI_API_KEY.
	APIKeyEnv string `toml:"api_key_env"`

	// Dimensions overrides the embedding vector size where the model
	// supports it.
	Dimensions int `toml:"dimensions"`
}

// IngestConfig holds ingestion pipeline parameters.
type IngestConfig struct {
	// BatchSize bounds how many chunk texts are sent to the embedding
	// provider per request.
	BatchSize int `toml:"batch_size"`
}

// DefaultPath returns the default config file location (~/.kbase/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".kbase", "config.toml"), nil
}

// Load reads the config file at path, applying defaults for missing values.
// A missing file yields the pure-default config; a malformed file or invalid
// values fail with domain.ErrInvalidConfig.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfig, path, err)
			}
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Storage.DataDir = filepath.Join(home, ".kbase", "data")
		}
	}
	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = DefaultChunkSize
	}
	if c.Chunking.Overlap == nil {
		overlap := 0
		if DefaultOverlap < c.Chunking.ChunkSize {
			overlap = DefaultOverlap
		}
		c.Chunking.Overlap = &overlap
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = DefaultProvider
	}
	if c.Embedding.APIKeyEnv == "" {
		c.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Ingest.BatchSize == 0 {
		c.Ingest.BatchSize = DefaultBatchSize
	}
}

func (c *Config) validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", domain.ErrInvalidConfig)
	}
	if overlap := *c.Chunking.Overlap; overlap < 0 || overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk_size)", domain.ErrInvalidConfig)
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be positive", domain.ErrInvalidConfig)
	}
	switch c.Embedding.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrInvalidConfig, c.Embedding.Provider)
	}
	return nil
}

// IndexDir returns the tenant-scoped directory holding the persisted index.
func (c *Config) IndexDir(tenantID string) string {
	return filepath.Join(c.Storage.DataDir, "tenants", tenantID, "index")
}
