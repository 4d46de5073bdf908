package store

import (
	"database/sql"

	"github.com/quillpad/gopad/internal/icons"
)

// StoreAsset saves an asset, replacing any existing asset with the same name.
func (s *SQLiteStore) StoreAsset(name, assetType, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	_, err := s.db.Exec(`
		INSERT INTO assets (name, type, content, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			type = excluded.type,
			content = excluded.content
	`, name, assetType, content, nowISO())
	return err
}

// Asset finds an asset by name (case-insensitive). Misses and read failures
// both return nil; asset lookup is never fatal.
func (s *SQLiteStore) Asset(name string) *Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a Asset
	err := s.db.QueryRow(`
		SELECT id, name, type, content, created_at
		FROM assets WHERE LOWER(name) = LOWER(?)
	`, name).Scan(&a.ID, &a.Name, &a.Type, &a.Content, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		s.log.Error("asset lookup failed", "name", name, "err", err)
		return nil
	}

	a.CreatedAt = normalizeTime(a.CreatedAt)
	return &a
}

// ListAssets returns all stored assets.
func (s *SQLiteStore) ListAssets() ([]*Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, type, content, created_at FROM assets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Content, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.CreatedAt = normalizeTime(a.CreatedAt)
		assets = append(assets, &a)
	}

	return assets, rows.Err()
}

// countAssets reports how many assets exist.
func (s *SQLiteStore) countAssets() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&count)
	return count, err
}

// SeedAssetsIfEmpty loads the bundled icon manifest into the assets table on
// first run. Individual icons that fail to convert are logged and skipped;
// the batch carries on. A non-empty table makes this a no-op.
func (s *SQLiteStore) SeedAssetsIfEmpty() error {
	count, err := s.countAssets()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, entry := range icons.Manifest() {
		icon, err := icons.Load(entry)
		if err != nil {
			s.log.Error("failed to load bundled icon", "name", entry.Name, "err", err)
			continue
		}
		if err := s.StoreAsset(icon.Name, icon.Type, icon.Content); err != nil {
			s.log.Error("failed to store bundled icon", "name", icon.Name, "err", err)
		}
	}

	return nil
}
