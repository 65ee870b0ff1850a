package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/exporter"
	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/neilberkman/storycards/internal/core/watcher"
	"github.com/spf13/cobra"
)

var (
	watchOutput string
	watchPrompt string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Export a deck for every document dropped into a directory",
	Long: `Watch a directory and turn each new or rewritten document into a
flashcard deck. Documents are processed one at a time once they stop changing.
Files already in the directory are left alone.

Examples:
  storycards watch ~/Downloads
  storycards watch ~/lectures -o ~/decks`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Directory for exported decks (default: config output_dir or current directory)")
	watchCmd.Flags().StringVar(&watchPrompt, "prompt", "", "Instruction sent with every upload (overrides prompt.txt)")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	e := exporter.New(cfg, gateway.NewClient(cfg.ServerURL, cfg.Timeout), database)
	process := func(ctx context.Context, path string) error {
		fmt.Printf("Processing %s...\n", path)
		res, err := e.Export(ctx, path, watchPrompt, watchOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
			return err
		}
		fmt.Printf("  ✓ %d cards → %s (%s)\n", len(res.Paragraphs), res.OutputPath, humanize.Bytes(uint64(res.Bytes)))
		return nil
	}

	w, err := watcher.New(config.ExpandHome(args[0]), cfg.Accept, process)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (ctrl+c to stop)\n", args[0])
	if err := w.Run(ctx); err != nil {
		return err
	}

	s := w.Stats()
	fmt.Printf("\nExported %d deck(s), %d error(s) since %s\n", s.Processed, s.Errors, humanize.Time(s.StartTime))
	return nil
}
