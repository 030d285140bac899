package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase-cli/internal/adapters/driving/tui"
	"github.com/kbase-labs/kbase-cli/internal/core/services"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [tenant]",
	Short: "Interactive query session for a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, args []string) error {
	retriever := services.NewRetrievalService(embedder, indexCache)

	model := tui.New(retriever, args[0])
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
