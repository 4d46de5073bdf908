package store

import (
	"database/sql"
	"fmt"
)

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanNote reads one notes row in column order
// (id, content, status, previous_status, is_favorite, created_at, updated_at).
func scanNote(sc scanner) (*Note, error) {
	var n Note
	var status, prev string
	var favorite int

	if err := sc.Scan(&n.ID, &n.Content, &status, &prev, &favorite, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}

	n.Status = Status(status)
	if !n.Status.Valid() {
		n.Status = StatusDefault
	}
	n.PreviousStatus = Status(prev)
	if !n.PreviousStatus.Valid() {
		n.PreviousStatus = StatusDefault
	}
	n.IsFavorite = favorite != 0
	n.CreatedAt = normalizeTime(n.CreatedAt)
	n.UpdatedAt = normalizeTime(n.UpdatedAt)

	return &n, nil
}

// ListNotes returns all notes in the given status bucket, favorites first,
// then newest-created-first.
func (s *SQLiteStore) ListNotes(status Status) ([]*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, content, status, previous_status, is_favorite, created_at, updated_at
		FROM notes WHERE status = ?
		ORDER BY is_favorite DESC, created_at DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// AddNote inserts a new note and returns its generated id.
// Content is sanitized before it reaches the row.
func (s *SQLiteStore) AddNote(content string, status Status) (int64, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("invalid note status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	now := nowISO()
	res, err := s.db.Exec(`
		INSERT INTO notes (content, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, s.sanitizer.Sanitize(content), string(status), now, now)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// UpdateNoteStatus moves a note into a new status bucket, capturing the old
// status as previous_status in the same statement so a concurrent read can
// never observe the transition half-applied.
func (s *SQLiteStore) UpdateNoteStatus(id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid note status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	res, err := s.db.Exec(`
		UPDATE notes SET previous_status = status, status = ?, updated_at = ?
		WHERE id = ?
	`, string(status), nowISO(), id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// NotePreviousStatus returns the status a note held before its current one.
// Only archived and deleted are meaningful restore targets; anything else,
// including corrupted legacy values, comes back as default.
func (s *SQLiteStore) NotePreviousStatus(id int64) (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var prev string
	err := s.db.QueryRow(`SELECT previous_status FROM notes WHERE id = ?`, id).Scan(&prev)
	if err == sql.ErrNoRows {
		return StatusDefault, fmt.Errorf("note %d not found", id)
	}
	if err != nil {
		return StatusDefault, err
	}

	switch Status(prev) {
	case StatusArchived, StatusDeleted:
		return Status(prev), nil
	}
	return StatusDefault, nil
}

// UpdateNoteContent replaces a note's content. Status is untouched.
func (s *SQLiteStore) UpdateNoteContent(id int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	res, err := s.db.Exec(`
		UPDATE notes SET content = ?, updated_at = ? WHERE id = ?
	`, s.sanitizer.Sanitize(content), nowISO(), id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// DeleteNote removes the row permanently.
func (s *SQLiteStore) DeleteNote(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	return err
}

// ToggleFavorite flips the favorite flag.
func (s *SQLiteStore) ToggleFavorite(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	res, err := s.db.Exec(`
		UPDATE notes SET is_favorite = NOT is_favorite, updated_at = ? WHERE id = ?
	`, nowISO(), id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// ListFavorites returns favorite notes still in the default bucket,
// newest-first.
func (s *SQLiteStore) ListFavorites() ([]*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, content, status, previous_status, is_favorite, created_at, updated_at
		FROM notes WHERE is_favorite = 1 AND status = 'default'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// SearchNotes finds notes whose content contains term, case-insensitively,
// newest-first. A non-empty status narrows the search to that bucket.
// Search is best-effort: any failure is logged and yields an empty result.
func (s *SQLiteStore) SearchNotes(term string, status Status) []*Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, content, status, previous_status, is_favorite, created_at, updated_at
		FROM notes WHERE content LIKE '%' || ? || '%' COLLATE NOCASE
	`
	args := []any{term}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.log.Error("note search failed", "err", err)
		return []*Note{}
	}
	defer rows.Close()

	notes := []*Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			s.log.Error("note search failed", "err", err)
			return []*Note{}
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("note search failed", "err", err)
		return []*Note{}
	}

	return notes
}

// requireRow turns a zero-row UPDATE into a not-found error.
func requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("note %d not found", id)
	}
	return nil
}
