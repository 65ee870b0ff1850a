package db

import (
	"fmt"
)

// runMigrations applies database migrations for existing databases
func (db *DB) runMigrations() error {
	// Migration 1: record the upload instruction alongside each export
	if err := db.migration001AddPrompt(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}

	return nil
}

// migration001AddPrompt adds the prompt column to exports
func (db *DB) migration001AddPrompt() error {
	var hasPrompt bool
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('exports')
		WHERE name='prompt'
	`).Scan(&hasPrompt)
	if err != nil {
		return err
	}

	if hasPrompt {
		return nil
	}

	if _, err := db.conn.Exec(`ALTER TABLE exports ADD COLUMN prompt TEXT NOT NULL DEFAULT '';`); err != nil {
		return fmt.Errorf("add prompt column: %w", err)
	}
	return nil
}
