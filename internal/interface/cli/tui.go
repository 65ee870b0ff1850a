package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/neilberkman/storycards/internal/interface/tui"
	"github.com/spf13/cobra"
)

// cleanupTimeout bounds the delete sent for a story still open at exit
const cleanupTimeout = 10 * time.Second

var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Launch interactive card reader",
	Long: `Launch an interactive terminal UI. Choose a document, read the generated
story card by card, export the deck, or reset to start over.

When a file is given it is uploaded right away.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	client := gateway.NewClient(cfg.ServerURL, cfg.Timeout)
	logger.Info("tui using story server %s", client.BaseURL())

	var path string
	if len(args) > 0 {
		path = args[0]
	}

	model := tui.New(tui.Options{
		Config:  cfg,
		Gateway: client,
		DB:      database,
		Path:    path,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	// Don't leave the uploaded document on the server
	if m, ok := finalModel.(tui.Model); ok {
		if ref := m.ServerRef(); ref != "" {
			ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer cancel()
			if err := client.DeleteArtifact(ctx, ref); err != nil {
				logger.Warn("cleanup of %s failed: %v", ref, err)
			}
		}
	}

	return nil
}
