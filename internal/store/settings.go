package store

import "database/sql"

// Setting returns the stored value for key. A missing key or a read failure
// both come back as the empty string; lookups here are never fatal.
func (s *SQLiteStore) Setting(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return ""
	}
	if err != nil {
		s.log.Error("setting lookup failed", "key", key, "err", err)
		return ""
	}
	return value
}

// SetSetting writes a setting, overwriting any previous value for the key.
// Failures propagate: callers may gate behavior on the write landing.
func (s *SQLiteStore) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
