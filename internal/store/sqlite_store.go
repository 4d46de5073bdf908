// SQLite store built on ncruces/go-sqlite3/driver, which provides a
// database/sql interface that works in js/wasm builds.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/quillpad/gopad/internal/snapshot"
)

// Config assembles a store. The zero value opens an in-memory database with
// no durable mirror; the composition root injects the Persister and logger.
type Config struct {
	// DSN is the SQLite data source name. Empty means ":memory:", which is
	// the only mode available in the browser; durability comes from the
	// Persister mirror, not from the database file.
	DSN string

	// Persister receives the serialized database after every mutation.
	// Nil disables the durable mirror.
	Persister Persister

	// Logger for recovered failures. Nil falls back to slog.Default().
	Logger *slog.Logger
}

// SQLiteStore is the SQLite-backed data store.
// Thread-safe for concurrent WASM callbacks.
type SQLiteStore struct {
	mu        sync.RWMutex
	db        *sql.DB
	persister Persister
	log       *slog.Logger
	sanitizer *bluemonday.Policy
}

// Open creates the database handle, restores the previous snapshot when one
// exists, and brings the schema up to the current version. A corrupt or
// unreadable snapshot falls back to a fresh empty database; Open never fails
// for that reason.
func Open(cfg Config) (*SQLiteStore, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The snapshot restore path rebuilds state through a single connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:        db,
		persister: cfg.Persister,
		log:       logger,
		sanitizer: bluemonday.UGCPolicy(),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if cfg.Persister != nil {
		s.restore()
	}

	return s, nil
}

// restore loads the saved snapshot into the fresh database. Any failure is
// logged and leaves the database empty. Import re-mirrors the restored rows,
// so a snapshot written by an older schema is saved back in migrated form.
func (s *SQLiteStore) restore() {
	raw, ok, err := s.persister.Load()
	if err != nil {
		s.log.Error("failed to load saved database", "err", err)
		return
	}
	if !ok {
		return
	}

	data, err := snapshot.Decode(raw)
	if err != nil {
		s.log.Error("failed to decode saved database", "err", err)
		return
	}

	if err := s.Import(data); err != nil {
		s.log.Error("failed to restore saved database", "err", err)
	}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// persist mirrors the whole database into durable storage. Called after
// every mutating operation. Failures are logged, never propagated: the
// in-memory state stays authoritative and the next mutation retries.
func (s *SQLiteStore) persist() {
	if s.persister == nil {
		return
	}

	data, err := s.exportLocked()
	if err != nil {
		s.log.Error("failed to serialize database", "err", err)
		return
	}

	if err := s.persister.Save(snapshot.Encode(data)); err != nil {
		s.log.Error("failed to save database", "err", err)
	}
}

// exportData is the portable snapshot shape: every table, as plain rows.
type exportData struct {
	Notes    []*Note       `json:"notes"`
	Settings []*Setting    `json:"settings"`
	Options  []*TextOption `json:"options"`
	Assets   []*Asset      `json:"assets"`
}

// Export serializes all database tables to JSON bytes.
// This is a portable export that doesn't depend on sqlite3 serialization APIs.
func (s *SQLiteStore) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exportLocked()
}

func (s *SQLiteStore) exportLocked() ([]byte, error) {
	var data exportData

	noteRows, err := s.db.Query(`
		SELECT id, content, status, previous_status, is_favorite, created_at, updated_at
		FROM notes ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("export notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		n, err := scanNote(noteRows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		data.Notes = append(data.Notes, n)
	}
	if err := noteRows.Err(); err != nil {
		return nil, fmt.Errorf("export notes: %w", err)
	}

	settingRows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	defer settingRows.Close()
	for settingRows.Next() {
		var st Setting
		if err := settingRows.Scan(&st.Key, &st.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		data.Settings = append(data.Settings, &st)
	}
	if err := settingRows.Err(); err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}

	optionRows, err := s.db.Query(`
		SELECT id, type, name, value, label, title, command, style, sort_order
		FROM text_options ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("export options: %w", err)
	}
	defer optionRows.Close()
	for optionRows.Next() {
		o, err := scanOption(optionRows)
		if err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		data.Options = append(data.Options, o)
	}
	if err := optionRows.Err(); err != nil {
		return nil, fmt.Errorf("export options: %w", err)
	}

	assetRows, err := s.db.Query(`
		SELECT id, name, type, content, created_at FROM assets ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("export assets: %w", err)
	}
	defer assetRows.Close()
	for assetRows.Next() {
		var a Asset
		if err := assetRows.Scan(&a.ID, &a.Name, &a.Type, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		data.Assets = append(data.Assets, &a)
	}
	if err := assetRows.Err(); err != nil {
		return nil, fmt.Errorf("export assets: %w", err)
	}

	return json.Marshal(data)
}

// Import restores the database state from an exported JSON byte slice.
// Clears all existing data and re-inserts from the export.
func (s *SQLiteStore) Import(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		return nil
	}

	if err := s.importLocked(data); err != nil {
		return err
	}

	s.persist()
	return nil
}

// importLocked replaces all table contents inside one transaction, so a bad
// export leaves the current data untouched.
func (s *SQLiteStore) importLocked(data []byte) error {
	var importData exportData
	if err := json.Unmarshal(data, &importData); err != nil {
		return fmt.Errorf("import unmarshal: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"notes", "settings", "text_options", "assets"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, n := range importData.Notes {
		status := n.Status
		if !status.Valid() {
			status = StatusDefault
		}
		prev := n.PreviousStatus
		if !prev.Valid() {
			prev = StatusDefault
		}
		_, err := tx.Exec(`
			INSERT INTO notes (id, content, status, previous_status, is_favorite, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, n.ID, n.Content, string(status), string(prev), boolToInt(n.IsFavorite),
			n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("import note %d: %w", n.ID, err)
		}
	}

	for _, st := range importData.Settings {
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, st.Key, st.Value); err != nil {
			return fmt.Errorf("import setting %s: %w", st.Key, err)
		}
	}

	for _, o := range importData.Options {
		styleJSON, err := encodeStyle(o.Style)
		if err != nil {
			return fmt.Errorf("import option %d: %w", o.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO text_options (id, type, name, value, label, title, command, style, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, o.Type, o.Name, o.Value, o.Label, o.Title, o.Command, styleJSON, o.SortOrder)
		if err != nil {
			return fmt.Errorf("import option %d: %w", o.ID, err)
		}
	}

	for _, a := range importData.Assets {
		_, err := tx.Exec(`
			INSERT INTO assets (id, name, type, content, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, a.ID, a.Name, a.Type, a.Content, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("import asset %s: %w", a.Name, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// Helpers
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nowISO is the canonical stored timestamp form.
func nowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// normalizeTime rewrites stored timestamps to ISO-8601. SQLite's
// CURRENT_TIMESTAMP default produces "2006-01-02 15:04:05"; rows created by
// the application already carry the T-separated form. Missing or invalid
// values fall back to now.
func normalizeTime(ts string) string {
	if ts == "" {
		return nowISO()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05.000Z")
		}
	}
	return nowISO()
}

// Compile-time interface check
var _ Storer = (*SQLiteStore)(nil)
