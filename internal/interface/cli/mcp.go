package cli

import (
	"fmt"

	"github.com/neilberkman/storycards/cmd/storycards/mcp"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server so assistants can generate story decks",
	Long: `Start an MCP (Model Context Protocol) server over stdio exposing
generate_story, export_deck and list_exports.

Configure in your client's config file:
  {
    "mcpServers": {
      "storycards": {
        "command": "storycards",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := mcp.StartServer(cfg, dbPath); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
