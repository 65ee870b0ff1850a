package models

import (
	"errors"
	"time"
)

// ExportRecord is one slide deck written to disk
type ExportRecord struct {
	ID             int64
	SourceName     string // Document the story was generated from
	ParagraphCount int
	OutputPath     string // Absolute path of the saved deck
	ByteSize       int64
	Prompt         string // Instruction sent with the upload, if any
	CreatedAt      time.Time
}

// Validate checks if the record has required fields
func (r *ExportRecord) Validate() error {
	if r.OutputPath == "" {
		return errors.New("output_path is required")
	}
	if r.ParagraphCount <= 0 {
		return errors.New("paragraph_count must be positive")
	}
	if r.ByteSize < 0 {
		return errors.New("byte_size cannot be negative")
	}
	return nil
}
