package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/neilberkman/storycards/internal/core/config"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/neilberkman/storycards/internal/core/deck"
	"github.com/neilberkman/storycards/internal/core/gateway"
	"github.com/neilberkman/storycards/internal/core/logger"
	"github.com/neilberkman/storycards/internal/core/models"
	"github.com/neilberkman/storycards/internal/core/session"
)

// Exporter turns a document into a saved deck in one call: upload, export,
// save, record, then delete the upload from the server. Each call runs its
// own session.
type Exporter struct {
	cfg      *config.Config
	gw       gateway.Gateway
	database *db.DB
}

// Result describes a saved deck
type Result struct {
	Source     string
	Paragraphs []string
	OutputPath string
	Bytes      int64
}

// New returns an Exporter. database may be nil to skip the history.
func New(cfg *config.Config, gw gateway.Gateway, database *db.DB) *Exporter {
	return &Exporter{cfg: cfg, gw: gw, database: database}
}

// Export runs the whole pipeline for the document at path. prompt overrides
// the configured template when not empty; outputDir overrides the configured
// output directory when not empty.
func (e *Exporter) Export(ctx context.Context, path, prompt, outputDir string) (Result, error) {
	in, err := session.NewInput(path, e.cfg.Accept, e.cfg.MaxUploadBytes)
	if err != nil {
		return Result{}, err
	}

	sent := ""
	fn := func(in session.Input) string {
		sent = prompt
		if sent == "" {
			p, err := e.cfg.RenderPrompt(in.Name, in.Size)
			if err != nil {
				logger.Warn("prompt template failed: %v", err)
			}
			sent = p
		}
		return sent
	}
	d := session.NewDriver(session.NewController(session.WithPrompt(fn)), e.gw)

	paragraphs, err := d.Generate(ctx, in)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := d.Reset(ctx); err != nil {
			logger.Warn("cleanup of %s failed: %v", in.Name, err)
		}
	}()

	dk, err := d.Export(ctx)
	if err != nil {
		return Result{}, err
	}

	dir := e.cfg.OutputDir
	if outputDir != "" {
		dir = outputDir
	}
	out, err := deck.Save(dir, e.cfg.DeckName, dk.Data)
	if err != nil {
		return Result{}, fmt.Errorf("failed to save deck: %w", err)
	}

	if e.database != nil {
		rec := &models.ExportRecord{
			SourceName:     dk.SourceName,
			ParagraphCount: dk.Paragraphs,
			OutputPath:     out,
			ByteSize:       int64(len(dk.Data)),
			Prompt:         sent,
			CreatedAt:      time.Now(),
		}
		if err := e.database.RecordExport(rec); err != nil {
			logger.Warn("failed to record export %s: %v", out, err)
		}
	}

	return Result{
		Source:     in.Name,
		Paragraphs: paragraphs,
		OutputPath: out,
		Bytes:      int64(len(dk.Data)),
	}, nil
}
