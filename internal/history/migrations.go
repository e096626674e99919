package history

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per saved session
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			tool_id TEXT NOT NULL DEFAULT '',
			operator TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT ''
		)`,

		// One row per view and kind of a saved session
		`CREATE TABLE IF NOT EXISTS measurements (
			entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
			view TEXT NOT NULL CHECK(view IN ('top_view', 'side_view')),
			kind TEXT NOT NULL,
			value REAL NOT NULL,
			uncertainty REAL,
			PRIMARY KEY (entry_id, view, kind)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
