package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/spf13/cobra"
)

var (
	dbPath      string
	serverURL   string
	debug       bool
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storycards",
	Short: "Turn documents into story flashcards",
	Long: `storycards - upload a document, read it back as a story, export flashcards

The document is sent to a story generation server, which answers with a
story. Each paragraph becomes one card. Cards can be exported as a
PowerPoint deck.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	// Global flags
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	defaultDB := filepath.Join(home, ".config", "storycards", "history.db")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Export history database path")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Story server URL (overrides config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug output")
}

// loadConfig reads the user config, applies global flags and starts logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	logger.SetDebug(debug)
	logPath := cfg.LogPath
	if logPath == "" {
		logPath = logger.DefaultLogPath
	}
	if err := logger.Init(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	return cfg, nil
}
