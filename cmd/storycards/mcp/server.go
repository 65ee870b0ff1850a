package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/exporter"
	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/neilberkman/storycards/internal/core/session"
	"github.com/neilberkman/storycards/internal/core/story"
)

// GenerateStoryArgs defines arguments for the generate_story tool
type GenerateStoryArgs struct {
	Path   string `json:"path" jsonschema:"description=Absolute path of the document to upload,required"`
	Prompt string `json:"prompt,omitempty" jsonschema:"description=Instruction sent with the upload"`
}

// ExportDeckArgs defines arguments for the export_deck tool
type ExportDeckArgs struct {
	Path      string `json:"path" jsonschema:"description=Absolute path of the document to upload,required"`
	Prompt    string `json:"prompt,omitempty" jsonschema:"description=Instruction sent with the upload"`
	OutputDir string `json:"output_dir,omitempty" jsonschema:"description=Directory for the deck"`
}

// ListExportsArgs defines arguments for the list_exports tool
type ListExportsArgs struct {
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Max exports to return (default: 20)"`
	Source    string `json:"source,omitempty" jsonschema:"description=Filter by source document name"`
	AfterDate string `json:"after_date,omitempty" jsonschema:"description=Only exports after this date (ISO 8601)"`
}

// Story is the generate_story result
type Story struct {
	Source     string   `json:"source"`
	Text       string   `json:"text"`
	Paragraphs []string `json:"paragraphs"`
	Count      int      `json:"count"`
}

// SavedDeck is the export_deck result
type SavedDeck struct {
	Source     string `json:"source"`
	OutputPath string `json:"output_path"`
	Size       string `json:"size"`
	Cards      int    `json:"cards"`
}

// ExportSummary represents an export in the list_exports result
type ExportSummary struct {
	Source     string `json:"source"`
	OutputPath string `json:"output_path"`
	Cards      int    `json:"cards"`
	Bytes      int64  `json:"bytes"`
	Prompt     string `json:"prompt,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// StartServer starts the MCP server on stdio
func StartServer(cfg *config.Config, dbPath string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			logger.Error("Error closing database: %v", closeErr)
		}
	}()

	client := gateway.NewClient(cfg.ServerURL, cfg.Timeout)
	logger.Info("mcp server using story server %s", client.BaseURL())

	s := NewServer(cfg, client, database)
	return server.ServeStdio(s)
}

// NewServer registers the storycards tools against gw and database
func NewServer(cfg *config.Config, gw gateway.Gateway, database *db.DB) *server.MCPServer {
	s := server.NewMCPServer(
		"storycards",
		"1.0.0",
	)

	generateTool := mcp.NewTool("generate_story",
		mcp.WithDescription("Upload a document to the story server and return the generated story, one paragraph per flashcard. The uploaded file is removed from the server afterwards."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the document (PDF)")),
		mcp.WithString("prompt",
			mcp.Description("Optional instruction for the story, e.g. 'set it in a pirate ship'")),
	)
	s.AddTool(generateTool, makeGenerateStoryHandler(cfg, gw))

	exportTool := mcp.NewTool("export_deck",
		mcp.WithDescription("Generate a story from a document and save it as a PowerPoint flashcard deck. Existing decks are never overwritten."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the document (PDF)")),
		mcp.WithString("prompt",
			mcp.Description("Optional instruction for the story")),
		mcp.WithString("output_dir",
			mcp.Description("Directory for the deck (default: configured output_dir or the working directory)")),
	)
	s.AddTool(exportTool, makeExportDeckHandler(cfg, gw, database))

	listTool := mcp.NewTool("list_exports",
		mcp.WithDescription("List previously exported flashcard decks, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max exports to return (default: 20)")),
		mcp.WithString("source",
			mcp.Description("Filter by source document name")),
		mcp.WithString("after_date",
			mcp.Description("Only exports after this date (ISO 8601 format, e.g. '2026-01-01')")),
	)
	s.AddTool(listTool, makeListExportsHandler(database))

	return s
}

func decodeArgs(request mcp.CallToolRequest, v interface{}) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	return json.Unmarshal(argsBytes, v)
}

func textResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// newDriver returns a driver for one tool call. Each call is its own session.
func newDriver(cfg *config.Config, gw gateway.Gateway, prompt string) *session.Driver {
	fn := func(in session.Input) string {
		if prompt != "" {
			return prompt
		}
		p, err := cfg.RenderPrompt(in.Name, in.Size)
		if err != nil {
			logger.Warn("prompt template failed: %v", err)
			return ""
		}
		return p
	}
	return session.NewDriver(session.NewController(session.WithPrompt(fn)), gw)
}

// cleanup deletes the call's server artifact
func cleanup(ctx context.Context, d *session.Driver) {
	if err := d.Reset(ctx); err != nil {
		logger.Warn("mcp cleanup failed: %v", err)
	}
}

func makeGenerateStoryHandler(cfg *config.Config, gw gateway.Gateway) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GenerateStoryArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		in, err := session.NewInput(args.Path, cfg.Accept, cfg.MaxUploadBytes)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		d := newDriver(cfg, gw, args.Prompt)
		paragraphs, err := d.Generate(ctx, in)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer cleanup(ctx, d)

		return textResult(Story{
			Source:     in.Name,
			Text:       story.Join(paragraphs),
			Paragraphs: paragraphs,
			Count:      len(paragraphs),
		})
	}
}

func makeExportDeckHandler(cfg *config.Config, gw gateway.Gateway, database *db.DB) server.ToolHandlerFunc {
	e := exporter.New(cfg, gw, database)
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ExportDeckArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		res, err := e.Export(ctx, args.Path, args.Prompt, args.OutputDir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return textResult(SavedDeck{
			Source:     res.Source,
			OutputPath: res.OutputPath,
			Size:       humanize.Bytes(uint64(res.Bytes)),
			Cards:      len(res.Paragraphs),
		})
	}
}

func makeListExportsHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListExportsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}
		filter := db.ExportFilter{Source: args.Source, Limit: limit}
		if args.AfterDate != "" {
			t, err := parseISODate(args.AfterDate)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			filter.After = t
		}

		records, err := database.ListExports(filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		exports := []ExportSummary{}
		for _, r := range records {
			exports = append(exports, ExportSummary{
				Source:     r.SourceName,
				OutputPath: r.OutputPath,
				Cards:      r.ParagraphCount,
				Bytes:      r.ByteSize,
				Prompt:     r.Prompt,
				CreatedAt:  r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}

		return textResult(map[string]interface{}{
			"exports": exports,
		})
	}
}

func parseISODate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use ISO 8601 (2026-01-01)", s)
}
