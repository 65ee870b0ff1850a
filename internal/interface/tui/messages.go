package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/deck"
	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/neilberkman/storycards/internal/core/models"
	"github.com/neilberkman/storycards/internal/core/session"
	"github.com/neilberkman/storycards/internal/core/viewer"
)

func log() *slog.Logger {
	return logger.ComponentLogger("tui")
}

type pathChosenMsg struct {
	path string
}

type uploadDoneMsg struct {
	result gateway.UploadResult
	err    error
}

type exportDoneMsg struct {
	data []byte
	err  error
}

type deleteDoneMsg struct {
	ref string
	err error
}

type deckSavedMsg struct {
	path string
	size string
	err  error
}

type clipboardMsg struct {
	err error
}

type deckOpenedMsg struct {
	path string
	err  error
}

func requestContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func uploadCmd(gw gateway.Gateway, cfg *config.Config, req gateway.UploadRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(cfg)
		defer cancel()

		res, err := gw.Upload(ctx, req)
		return uploadDoneMsg{result: res, err: err}
	}
}

func exportCmd(gw gateway.Gateway, cfg *config.Config, req gateway.ExportRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(cfg)
		defer cancel()

		data, err := gw.ExportDeck(ctx, req)
		return exportDoneMsg{data: data, err: err}
	}
}

func deleteCmd(gw gateway.Gateway, cfg *config.Config, ref string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext(cfg)
		defer cancel()

		return deleteDoneMsg{ref: ref, err: gw.DeleteArtifact(ctx, ref)}
	}
}

// saveDeckCmd writes the deck to disk and records it in the export history.
// A history failure is logged but does not fail the save.
func saveDeckCmd(cfg *config.Config, database *db.DB, d session.Deck, prompt string) tea.Cmd {
	return func() tea.Msg {
		path, err := deck.Save(cfg.OutputDir, cfg.DeckName, d.Data)
		if err != nil {
			return deckSavedMsg{err: err}
		}

		if database != nil {
			rec := &models.ExportRecord{
				SourceName:     d.SourceName,
				ParagraphCount: d.Paragraphs,
				OutputPath:     path,
				ByteSize:       int64(len(d.Data)),
				Prompt:         prompt,
				CreatedAt:      time.Now(),
			}
			if err := database.RecordExport(rec); err != nil {
				log().Warn("failed to record export", "path", path, "error", err)
			}
		}

		return deckSavedMsg{path: path, size: humanize.Bytes(uint64(len(d.Data)))}
	}
}

func copyCardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(text)}
	}
}

func openDeckCmd(cfg *config.Config, path string) tea.Cmd {
	return func() tea.Msg {
		o := &viewer.Opener{CustomCommand: cfg.OpenCommand}
		return deckOpenedMsg{path: path, err: o.Open(path)}
	}
}

// failureReason pulls the server or transport message out of a gateway error
func failureReason(err error) string {
	var f *gateway.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
