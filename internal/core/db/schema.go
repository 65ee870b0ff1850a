package db

func (db *DB) initSchema() error {
	schema := `
	-- One row per slide deck saved to disk
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_name TEXT NOT NULL DEFAULT '',
		paragraph_count INTEGER NOT NULL,
		output_path TEXT NOT NULL,
		byte_size INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}
