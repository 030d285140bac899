package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase-cli/internal/chunker"
	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
	"github.com/kbase-labs/kbase-cli/internal/core/services"
	"github.com/kbase-labs/kbase-cli/internal/extractors"
	"github.com/kbase-labs/kbase-cli/internal/extractors/pdf"
	"github.com/kbase-labs/kbase-cli/internal/extractors/plaintext"
	"github.com/kbase-labs/kbase-cli/internal/index/flat"
)

var (
	ingestChunkSize int
	ingestOverlap   int
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [tenant] [documents-dir]",
	Short: "Ingest a tenant's documents into its vector index",
	Long: `Extracts text from supported documents (.txt, .md, .pdf), splits it into
overlapping chunks, embeds them, and replaces the tenant's persisted index.
Unsupported files are skipped; documents that fail extraction are reported
and ingestion continues.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "characters per chunk (default from config)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", -1, "overlapping characters between chunks (default from config)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	tenantID, documentsDir := args[0], args[1]

	chunkSize := cfg.Chunking.ChunkSize
	if ingestChunkSize > 0 {
		chunkSize = ingestChunkSize
	}
	overlap := *cfg.Chunking.Overlap
	if ingestOverlap >= 0 {
		overlap = ingestOverlap
	}

	ck, err := chunker.New(chunker.WithChunkSize(chunkSize), chunker.WithOverlap(overlap))
	if err != nil {
		return err
	}

	registry := extractors.NewRegistry(plaintext.New(), pdf.New())

	svc := services.NewIngestionService(
		registry,
		ck,
		embedder,
		indexCache,
		func() driven.VectorIndex { return flat.New() },
		cfg.IndexDir,
		cfg.Ingest.BatchSize,
	)

	report, err := svc.Ingest(context.Background(), tenantID, documentsDir)
	if err != nil {
		if report != nil && len(report.Failures) > 0 {
			printFailures(cmd, report)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Ingested tenant %s in %s\n", report.Tenant, report.Duration.Round(time.Millisecond))
	cmd.Printf("  Documents processed: %d\n", report.DocumentsProcessed)
	cmd.Printf("  Documents skipped:   %d\n", report.DocumentsSkipped)
	cmd.Printf("  Chunks produced:     %d\n", report.ChunksProduced)
	cmd.Printf("  Entries written:     %d\n", report.EntriesWritten)
	printFailures(cmd, report)

	return nil
}

func printFailures(cmd *cobra.Command, report *domain.IngestionReport) {
	if len(report.Failures) == 0 {
		return
	}
	cmd.Printf("  Failures:            %d\n", len(report.Failures))
	for _, f := range report.Failures {
		cmd.Printf("    %s: %s\n", f.Source, f.Reason)
	}
}
