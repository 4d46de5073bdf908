package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// encodeStyle writes the canonical single JSON encoding of a style mapping.
// An empty style stores as the empty string.
func encodeStyle(style map[string]string) (string, error) {
	if len(style) == 0 {
		return "", nil
	}
	b, err := json.Marshal(style)
	if err != nil {
		return "", fmt.Errorf("encode style: %w", err)
	}
	return string(b), nil
}

// decodeStyle parses a stored style payload. Rows written by older app
// revisions may be JSON-encoded more than once ("\"{\\\"a\\\":1}\""), so
// string layers are unwrapped until an object appears. Unparseable payloads
// degrade to an empty style rather than failing the read.
func decodeStyle(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	for range 3 {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			break
		}
		raw = inner
	}

	var style map[string]string
	if err := json.Unmarshal([]byte(raw), &style); err != nil {
		return map[string]string{}
	}
	return style
}

// scanOption reads one text_options row in column order
// (id, type, name, value, label, title, command, style, sort_order).
func scanOption(sc scanner) (*TextOption, error) {
	var o TextOption
	var style string

	if err := sc.Scan(&o.ID, &o.Type, &o.Name, &o.Value, &o.Label, &o.Title, &o.Command, &style, &o.SortOrder); err != nil {
		return nil, err
	}

	o.Style = decodeStyle(style)
	return &o, nil
}

// ListOptions returns all options of one category in display order.
func (s *SQLiteStore) ListOptions(optionType string) ([]*TextOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, type, name, value, label, title, command, style, sort_order
		FROM text_options WHERE type = ? ORDER BY sort_order ASC
	`, optionType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []*TextOption
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, o)
	}

	return options, rows.Err()
}

// AddOption inserts one text option. The label falls back to the name, and
// the style mapping is written in its canonical encoded form.
func (s *SQLiteStore) AddOption(opt *TextOption) error {
	label := opt.Label
	if label == "" {
		label = opt.Name
	}

	styleJSON, err := encodeStyle(opt.Style)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.persist()

	res, err := s.db.Exec(`
		INSERT INTO text_options (type, name, value, label, title, command, style, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, opt.Type, opt.Name, opt.Value, label, opt.Title, opt.Command, styleJSON, opt.SortOrder)
	if err != nil {
		return err
	}

	opt.ID, err = res.LastInsertId()
	return err
}

// countOptions reports how many rows of a category exist.
func (s *SQLiteStore) countOptions(optionType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM text_options WHERE type = ?`, optionType).Scan(&count)
	return count, err
}

func defaultSizeOptions() []*TextOption {
	var opts []*TextOption
	for i := 0; i < 8; i++ {
		px := (i + 1) * 7
		opts = append(opts, &TextOption{
			Type:      OptionSize,
			Name:      fmt.Sprintf("%dpx", px),
			Value:     fmt.Sprintf("%d", px),
			Label:     fmt.Sprintf("%dpx", px),
			SortOrder: i,
		})
	}
	return opts
}

func defaultFormatOptions() []*TextOption {
	return []*TextOption{
		{
			Type: OptionFormat, Name: "bold", Value: "bold",
			Title: "Bold", Command: "bold", Label: "B",
			Style: map[string]string{"fontWeight": "bold"}, SortOrder: 0,
		},
		{
			Type: OptionFormat, Name: "italic", Value: "italic",
			Title: "Italic", Command: "italic", Label: "I",
			Style: map[string]string{"fontStyle": "italic"}, SortOrder: 1,
		},
		{
			Type: OptionFormat, Name: "underline", Value: "underline",
			Title: "Underline", Command: "underline", Label: "U",
			Style: map[string]string{"textDecoration": "underline"}, SortOrder: 2,
		},
	}
}

func defaultColorOptions() []*TextOption {
	return []*TextOption{
		{Type: OptionColor, Name: "Black", Value: "rgb(0, 0, 0)", SortOrder: 0},
		{Type: OptionColor, Name: "Red", Value: "rgb(179, 23, 23)", SortOrder: 1},
		{Type: OptionColor, Name: "Green", Value: "rgb(36, 148, 26)", SortOrder: 2},
		{Type: OptionColor, Name: "Blue", Value: "rgb(26, 74, 197)", SortOrder: 3},
		{Type: OptionColor, Name: "Yellow", Value: "rgb(241, 187, 9)", SortOrder: 4},
	}
}

// seedCategory inserts the default set for one category when it is empty.
func (s *SQLiteStore) seedCategory(optionType string, defaults []*TextOption) error {
	count, err := s.countOptions(optionType)
	if err != nil {
		return fmt.Errorf("seed %s options: %w", optionType, err)
	}
	if count > 0 {
		return nil
	}

	for _, opt := range defaults {
		if err := s.AddOption(opt); err != nil {
			return fmt.Errorf("seed %s options: %w", optionType, err)
		}
	}
	return nil
}

// SeedDefaults populates the three option categories on first run. Each
// category seed is a no-op when rows of that type already exist, so this is
// safe to call on every app start. The categories seed concurrently.
func (s *SQLiteStore) SeedDefaults() error {
	seeds := []struct {
		optionType string
		defaults   []*TextOption
	}{
		{OptionSize, defaultSizeOptions()},
		{OptionFormat, defaultFormatOptions()},
		{OptionColor, defaultColorOptions()},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(seeds))

	for i, seed := range seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.seedCategory(seed.optionType, seed.defaults)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
