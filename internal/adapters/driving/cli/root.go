// Package cli provides the cobra command tree for the kbase binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase-cli/internal/adapters/driven/embedding"
	"github.com/kbase-labs/kbase-cli/internal/config"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
	"github.com/kbase-labs/kbase-cli/internal/core/services"
	"github.com/kbase-labs/kbase-cli/internal/index/flat"
	"github.com/kbase-labs/kbase-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagVerbose bool
)

// Shared state built once per invocation by initServices.
var (
	cfg        *config.Config
	embedder   driven.EmbeddingService
	indexCache *services.IndexCache
)

var rootCmd = &cobra.Command{
	Use:   "kbase",
	Short: "Tenant knowledge base retrieval engine",
	Long: `kbase ingests a tenant's documents into a persisted vector index and
retrieves ranked context chunks for natural-language queries.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.kbase/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices loads configuration and builds the embedding backend and the
// process-wide index cache shared by all commands.
func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	path := flagConfig
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg = loaded
	logger.Debug("Config: provider=%s, data_dir=%s", cfg.Embedding.Provider, cfg.Storage.DataDir)

	svc, err := embedding.New(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("configuring embedding backend: %w", err)
	}
	embedder = svc

	indexCache = services.NewIndexCache(func(tenantID string) (driven.VectorIndex, error) {
		return flat.Load(cfg.IndexDir(tenantID))
	})

	return nil
}
