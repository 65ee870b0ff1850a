package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/deck"
	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/neilberkman/storycards/internal/core/models"
	"github.com/neilberkman/storycards/internal/core/session"
	"github.com/neilberkman/storycards/internal/core/viewer"
	"github.com/spf13/cobra"
)

var (
	generatePrompt string
	generateExport bool
	generateOutput string
	generateKeep   bool
	generateOpen   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate a story from a document without the TUI",
	Long: `Upload a document, print the story one card per paragraph and
optionally export the slide deck.

The uploaded file is deleted from the server afterwards unless --keep is set.

Examples:
  storycards generate lecture.pdf
  storycards generate lecture.pdf --export
  storycards generate lecture.pdf --export -o ~/decks
  storycards generate lecture.pdf --prompt "Set it in space"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generatePrompt, "prompt", "", "Instruction sent with the upload (overrides prompt.txt)")
	generateCmd.Flags().BoolVar(&generateExport, "export", false, "Export the cards as a slide deck")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Directory for the exported deck (default: config output_dir or current directory)")
	generateCmd.Flags().BoolVar(&generateKeep, "keep", false, "Leave the uploaded file on the server")
	generateCmd.Flags().BoolVar(&generateOpen, "open", false, "Open the exported deck when done (implies --export)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()
	if generateOutput != "" {
		cfg.OutputDir = generateOutput
	}

	in, err := session.NewInput(args[0], cfg.Accept, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	prompt := session.PromptFunc(func(in session.Input) string {
		p, err := cfg.RenderPrompt(in.Name, in.Size)
		if err != nil {
			logger.Warn("prompt template failed: %v", err)
			return ""
		}
		return p
	})
	if cmd.Flags().Changed("prompt") {
		prompt = func(session.Input) string { return generatePrompt }
	}

	client := gateway.NewClient(cfg.ServerURL, cfg.Timeout)
	logger.Info("generate %s via %s", in.Name, client.BaseURL())
	driver := session.NewDriver(session.NewController(session.WithPrompt(prompt)), client)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sp := session.NewSpinner(os.Stderr, fmt.Sprintf("Generating story from %s (%s)", in.Name, humanize.Bytes(uint64(in.Size))))
	sp.Start()
	paragraphs, err := driver.Generate(ctx, in)
	sp.Stop()
	if err != nil {
		return err
	}

	if !generateKeep {
		defer func() {
			if err := driver.Reset(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}()
	}

	for i, p := range paragraphs {
		fmt.Printf("── %d of %d ──\n%s\n\n", i+1, len(paragraphs), p)
	}

	if !generateExport && !generateOpen {
		return nil
	}

	sp = session.NewSpinner(os.Stderr, "Building slide deck")
	sp.Start()
	d, err := driver.Export(ctx)
	sp.Stop()
	if err != nil {
		return err
	}

	path, err := deck.Save(cfg.OutputDir, cfg.DeckName, d.Data)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved %s (%s)\n", path, humanize.Bytes(uint64(len(d.Data))))

	recordExport(d, path, prompt(in))

	if generateOpen {
		o := &viewer.Opener{CustomCommand: cfg.OpenCommand}
		if err := o.Open(path); err != nil {
			return err
		}
	}
	return nil
}

// recordExport adds a saved deck to the history. Failures only warn.
func recordExport(d session.Deck, path, prompt string) {
	database, err := db.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history not recorded: %v\n", err)
		return
	}
	defer func() {
		_ = database.Close()
	}()

	rec := &models.ExportRecord{
		SourceName:     d.SourceName,
		ParagraphCount: d.Paragraphs,
		OutputPath:     path,
		ByteSize:       int64(len(d.Data)),
		Prompt:         prompt,
		CreatedAt:      time.Now(),
	}
	if err := database.RecordExport(rec); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history not recorded: %v\n", err)
	}
}
