package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/services"
)

var (
	queryK    int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [tenant] [question]",
	Short: "Retrieve ranked context chunks for a query",
	Long: `Embeds the question and returns the k nearest chunks from the tenant's
knowledge base, ordered by ascending distance (most similar first).`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 5, "number of chunks to retrieve")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	tenantID, question := args[0], args[1]

	svc := services.NewRetrievalService(embedder, indexCache)

	results, err := svc.Retrieve(context.Background(), tenantID, question, queryK)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotIngested) {
			return fmt.Errorf("tenant %s has no ingested documents (run 'kbase ingest' first)", tenantID)
		}
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s #%d (distance %.4f)\n", i+1, r.Ref.DocumentID, r.Ref.Ordinal, r.Distance)
		cmd.Printf("      %s\n", snippet(r.Text, 200))
		cmd.Println()
	}

	return nil
}

// snippet truncates s for single-line display without splitting a rune.
func snippet(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
