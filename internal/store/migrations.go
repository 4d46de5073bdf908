package store

import (
	"fmt"
)

// Schema changes are ordered, versioned steps recorded in schema_migrations.
// Every step must be safe against data already present: databases restored
// from old snapshots re-enter here on every open.
type migration struct {
	version int
	name    string
	stmts   string
}

var migrations = []migration{
	{
		version: 1,
		name:    "notes and settings",
		stmts: `
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'default',
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL DEFAULT ''
);
`,
	},
	{
		version: 2,
		name:    "favorite flag",
		stmts:   `ALTER TABLE notes ADD COLUMN is_favorite INTEGER NOT NULL DEFAULT 0;`,
	},
	{
		version: 3,
		name:    "previous status for restore",
		stmts:   `ALTER TABLE notes ADD COLUMN previous_status TEXT NOT NULL DEFAULT 'default';`,
	},
	{
		version: 4,
		name:    "text options",
		stmts: `
CREATE TABLE IF NOT EXISTS text_options (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    command TEXT NOT NULL DEFAULT '',
    style TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_text_options_type ON text_options(type);
`,
	},
	{
		version: 5,
		name:    "assets",
		stmts: `
CREATE TABLE IF NOT EXISTS assets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`,
	},
}

// migrate brings the schema to the current version. Idempotent: applied
// versions are skipped, each pending step runs in its own transaction and
// is recorded atomically with its changes.
func (s *SQLiteStore) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
		    version INTEGER PRIMARY KEY,
		    name TEXT NOT NULL,
		    applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmts); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
		s.log.Info("applied schema migration", "version", m.version, "name", m.name)
	}

	return nil
}

// schemaVersion returns the highest applied migration version.
func (s *SQLiteStore) schemaVersion() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}
