package cli

import (
	"fmt"
	"path/filepath"

	"github.com/neilberkman/storycards/internal/core/session"
	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <file>",
	Short: "Show the instruction that would be sent with a document",
	Long: `Render prompt.txt from the config directory for a document without
uploading anything. Prints nothing when no template is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in, err := session.NewInput(args[0], cfg.Accept, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	prompt, err := cfg.RenderPrompt(filepath.Base(in.Path), in.Size)
	if err != nil {
		return fmt.Errorf("failed to render prompt: %w", err)
	}
	if prompt == "" {
		fmt.Println("No prompt template configured (add prompt.txt to ~/.config/storycards/)")
		return nil
	}

	fmt.Println(prompt)
	return nil
}
