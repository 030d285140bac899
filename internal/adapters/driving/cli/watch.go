package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase-cli/internal/chunker"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
	"github.com/kbase-labs/kbase-cli/internal/core/services"
	"github.com/kbase-labs/kbase-cli/internal/extractors"
	"github.com/kbase-labs/kbase-cli/internal/extractors/pdf"
	"github.com/kbase-labs/kbase-cli/internal/extractors/plaintext"
	"github.com/kbase-labs/kbase-cli/internal/index/flat"
	"github.com/kbase-labs/kbase-cli/internal/logger"
)

// watchDebounce batches rapid editor save events into one re-ingestion.
const watchDebounce = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [tenant] [documents-dir]",
	Short: "Re-ingest a tenant whenever its documents change",
	Long: `Watches the documents directory and re-runs ingestion after changes
settle. The previous index keeps serving queries until the new one is saved.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	tenantID, documentsDir := args[0], args[1]

	ck, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(*cfg.Chunking.Overlap),
	)
	if err != nil {
		return err
	}

	svc := services.NewIngestionService(
		extractors.NewRegistry(plaintext.New(), pdf.New()),
		ck,
		embedder,
		indexCache,
		func() driven.VectorIndex { return flat.New() },
		cfg.IndexDir,
		cfg.Ingest.BatchSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingest := func() {
		report, err := svc.Ingest(ctx, tenantID, documentsDir)
		if err != nil {
			cmd.PrintErrf("ingestion failed: %v\n", err)
			return
		}
		cmd.Printf("Re-ingested %s: %d documents, %d entries\n",
			tenantID, report.DocumentsProcessed, report.EntriesWritten)
	}

	// Initial run so the watcher never serves a stale index.
	ingest()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(documentsDir); err != nil {
		return fmt.Errorf("watching %s: %w", documentsDir, err)
	}

	cmd.Printf("Watching %s for tenant %s (Ctrl-C to stop)\n", documentsDir, tenantID)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Change detected: %s", event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			ingest()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("watch error: %v\n", err)
		}
	}
}
