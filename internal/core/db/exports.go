package db

import (
	"fmt"
	"time"

	"github.com/neilberkman/storycards/internal/core/models"
)

// ExportFilter narrows ListExports
type ExportFilter struct {
	After  time.Time // Zero means no lower bound
	Before time.Time // Zero means no upper bound
	Source string    // Exact source document name, empty for all
	Limit  int       // 0 means no limit
}

// RecordExport stores a saved deck and fills in its ID
func (db *DB) RecordExport(rec *models.ExportRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid export record: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	res, err := db.conn.Exec(`
		INSERT INTO exports (source_name, paragraph_count, output_path, byte_size, prompt, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.SourceName, rec.ParagraphCount, rec.OutputPath, rec.ByteSize, rec.Prompt, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get export id: %w", err)
	}
	rec.ID = id
	return nil
}

// ListExports returns saved decks, newest first
func (db *DB) ListExports(filter ExportFilter) ([]models.ExportRecord, error) {
	query := `
		SELECT id, source_name, paragraph_count, output_path, byte_size, prompt, created_at
		FROM exports
		WHERE 1=1`
	var args []interface{}

	if !filter.After.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.After.UTC())
	}
	if !filter.Before.IsZero() {
		query += " AND created_at < ?"
		args = append(args, filter.Before.UTC())
	}
	if filter.Source != "" {
		query += " AND source_name = ?"
		args = append(args, filter.Source)
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.ExportRecord
	for rows.Next() {
		var r models.ExportRecord
		if err := rows.Scan(&r.ID, &r.SourceName, &r.ParagraphCount, &r.OutputPath,
			&r.ByteSize, &r.Prompt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
