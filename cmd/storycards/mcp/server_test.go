package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/gateway"
)

type stubGateway struct {
	story     string
	uploadErr error
	deck      []byte
	prompts   []string
	deletes   []string
}

func (g *stubGateway) Upload(ctx context.Context, req gateway.UploadRequest) (gateway.UploadResult, error) {
	g.prompts = append(g.prompts, req.Prompt)
	if g.uploadErr != nil {
		return gateway.UploadResult{}, g.uploadErr
	}
	return gateway.UploadResult{Story: g.story, FileRef: "uploads/" + req.FileName}, nil
}

func (g *stubGateway) ExportDeck(ctx context.Context, req gateway.ExportRequest) ([]byte, error) {
	return g.deck, nil
}

func (g *stubGateway) DeleteArtifact(ctx context.Context, ref string) error {
	g.deletes = append(g.deletes, ref)
	return nil
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (*mcp.CallToolResult, string) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return res, text.Text
}

func TestGenerateStory(t *testing.T) {
	gw := &stubGateway{story: "One.\n\nTwo."}
	h := makeGenerateStoryHandler(config.Default(), gw)

	res, text := call(t, h, map[string]interface{}{
		"path":   writePDF(t),
		"prompt": "make it rhyme",
	})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", text)
	}

	var story Story
	if err := json.Unmarshal([]byte(text), &story); err != nil {
		t.Fatalf("bad JSON %q: %v", text, err)
	}
	if story.Count != 2 || story.Paragraphs[1] != "Two." || story.Source != "lecture.pdf" || story.Text != "One.\n\nTwo." {
		t.Errorf("story = %+v", story)
	}
	if len(gw.prompts) != 1 || gw.prompts[0] != "make it rhyme" {
		t.Errorf("prompts = %q", gw.prompts)
	}
	if len(gw.deletes) != 1 || gw.deletes[0] != "uploads/lecture.pdf" {
		t.Errorf("deletes = %q, want the upload cleaned up", gw.deletes)
	}
}

func TestGenerateStory_Errors(t *testing.T) {
	tests := []struct {
		name string
		gw   *stubGateway
		path func(t *testing.T) string
	}{
		{
			name: "wrong type",
			gw:   &stubGateway{story: "x"},
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "notes.txt")
				_ = os.WriteFile(p, []byte("x"), 0644)
				return p
			},
		},
		{
			name: "server failure",
			gw:   &stubGateway{uploadErr: &gateway.Failure{Op: "upload", Message: "boom"}},
			path: writePDF,
		},
		{
			name: "transport failure",
			gw:   &stubGateway{uploadErr: errors.New("connection refused")},
			path: writePDF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := makeGenerateStoryHandler(config.Default(), tt.gw)
			res, text := call(t, h, map[string]interface{}{"path": tt.path(t)})
			if !res.IsError {
				t.Errorf("expected error result, got %s", text)
			}
		})
	}
}

func TestExportDeckAndList(t *testing.T) {
	gw := &stubGateway{story: "A.\n\nB.\n\nC.", deck: []byte("PKdeck")}
	database := openDB(t)
	outDir := t.TempDir()
	exportH := makeExportDeckHandler(config.Default(), gw, database)

	res, text := call(t, exportH, map[string]interface{}{
		"path":       writePDF(t),
		"output_dir": outDir,
	})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", text)
	}

	var saved SavedDeck
	if err := json.Unmarshal([]byte(text), &saved); err != nil {
		t.Fatalf("bad JSON %q: %v", text, err)
	}
	if saved.OutputPath != filepath.Join(outDir, "flashcards.pptx") || saved.Cards != 3 {
		t.Errorf("saved = %+v", saved)
	}
	data, err := os.ReadFile(saved.OutputPath)
	if err != nil || string(data) != "PKdeck" {
		t.Errorf("deck file = %q, %v", data, err)
	}

	listH := makeListExportsHandler(database)
	_, text = call(t, listH, map[string]interface{}{"source": "lecture.pdf"})

	var listed struct {
		Exports []ExportSummary `json:"exports"`
	}
	if err := json.Unmarshal([]byte(text), &listed); err != nil {
		t.Fatalf("bad JSON %q: %v", text, err)
	}
	if len(listed.Exports) != 1 || listed.Exports[0].OutputPath != saved.OutputPath {
		t.Errorf("exports = %+v", listed.Exports)
	}
}

func TestListExports_BadDate(t *testing.T) {
	h := makeListExportsHandler(openDB(t))
	res, text := call(t, h, map[string]interface{}{"after_date": "someday"})
	if !res.IsError {
		t.Errorf("expected error result, got %s", text)
	}
}
