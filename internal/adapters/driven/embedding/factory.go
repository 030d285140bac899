// Package embedding constructs the configured embedding backend.
// Backend selection happens here and nowhere else; the engine core only
// ever sees the driven.EmbeddingService contract.
package embedding

import (
	"fmt"
	"os"

	"github.com/kbase-labs/kbase-cli/internal/adapters/driven/embedding/ollama"
	"github.com/kbase-labs/kbase-cli/internal/adapters/driven/embedding/openai"
	"github.com/kbase-labs/kbase-cli/internal/config"
	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
)

// New builds an EmbeddingService from configuration.
func New(cfg config.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "openai":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%w: environment variable %s is not set",
				domain.ErrInvalidConfig, cfg.APIKeyEnv)
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})

	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrInvalidConfig, cfg.Provider)
	}
}
