// Package store provides SQLite-backed persistence for GoPad.
// It owns the notes/settings/text_options/assets tables and mirrors the
// whole database into durable browser storage after every mutation.
package store

// Status is a note's lifecycle bucket. It doubles as the UI's filter view.
type Status string

const (
	StatusDefault  Status = "default"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Valid reports whether s is one of the three lifecycle buckets.
func (s Status) Valid() bool {
	switch s {
	case StatusDefault, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// Note is a rich-text note. Content is sanitized markup; the sanitizer runs
// on every write path, so rows never hold unsafe HTML.
type Note struct {
	ID             int64  `json:"id"`
	Content        string `json:"content"`
	Status         Status `json:"status"`
	PreviousStatus Status `json:"previousStatus"`
	IsFavorite     bool   `json:"isFavorite"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// Setting is a small persisted key/value flag.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Text option categories offered by the editor toolbar.
const (
	OptionSize   = "size"
	OptionFormat = "format"
	OptionColor  = "color"
)

// TextOption is a configurable rich-text styling choice (size/format/color).
// Style is a flat property-name -> value mapping persisted as a single
// canonical JSON encoding.
type TextOption struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Value     string            `json:"value"`
	Label     string            `json:"label,omitempty"`
	Title     string            `json:"title,omitempty"`
	Command   string            `json:"command,omitempty"`
	Style     map[string]string `json:"style,omitempty"`
	SortOrder int               `json:"sortOrder"`
}

// Asset kinds.
const (
	AssetImage = "image"
	AssetSVG   = "svg"
)

// Asset is a stored icon resource: a data-URL-encoded raster image or raw
// SVG markup, addressed by unique name.
type Asset struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Persister mirrors the serialized database into durable storage.
// The wasm build persists to localStorage; tests use an in-memory slot.
type Persister interface {
	// Load returns the saved snapshot bytes, and false if no snapshot exists.
	Load() ([]byte, bool, error)
	// Save writes the snapshot bytes, replacing any previous snapshot.
	Save(data []byte) error
}

// Storer defines the operation surface consumed by the UI layer.
// SQLiteStore is the sole implementation.
type Storer interface {
	// Notes
	ListNotes(status Status) ([]*Note, error)
	AddNote(content string, status Status) (int64, error)
	UpdateNoteStatus(id int64, status Status) error
	NotePreviousStatus(id int64) (Status, error)
	UpdateNoteContent(id int64, content string) error
	DeleteNote(id int64) error
	ToggleFavorite(id int64) error
	ListFavorites() ([]*Note, error)
	SearchNotes(term string, status Status) []*Note

	// Settings
	Setting(key string) string
	SetSetting(key, value string) error

	// Text options
	ListOptions(optionType string) ([]*TextOption, error)
	AddOption(opt *TextOption) error
	SeedDefaults() error

	// Assets
	StoreAsset(name, assetType, content string) error
	Asset(name string) *Asset
	ListAssets() ([]*Asset, error)
	SeedAssetsIfEmpty() error

	// Snapshot (database serialization for durable mirror / OPFS sync)
	Export() ([]byte, error)
	Import(data []byte) error

	// Lifecycle
	Close() error
}
