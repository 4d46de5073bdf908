package store

import (
	"sync"
	"testing"
)

// memPersister is the in-memory durable slot used by tests.
type memPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func (p *memPersister) Load() ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, false, nil
	}
	return p.data, true, nil
}

func (p *memPersister) Save(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = append([]byte(nil), data...)
	p.saves++
	return nil
}

func (p *memPersister) snapshot() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.data...)
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(Config{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenFreshStore(t *testing.T) {
	s := openTestStore(t)

	notes, err := s.ListNotes(StatusDefault)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected empty store, got %d notes", len(notes))
	}

	v, err := s.schemaVersion()
	if err != nil {
		t.Fatalf("schemaVersion failed: %v", err)
	}
	if want := migrations[len(migrations)-1].version; v != want {
		t.Errorf("expected schema version %d, got %d", want, v)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := openTestStore(t)

	id, err := s.AddNote("alpha", StatusDefault)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if err := s.ToggleFavorite(id); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if err := s.SetSetting("seen_welcome", "true"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := s.AddOption(&TextOption{Type: OptionColor, Name: "Teal", Value: "rgb(0, 128, 128)"}); err != nil {
		t.Fatalf("AddOption failed: %v", err)
	}
	if err := s.StoreAsset("logo", AssetImage, "data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("StoreAsset failed: %v", err)
	}

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("exported data is empty")
	}

	// A new store simulates a fresh page load.
	s2 := openTestStore(t)
	if err := s2.Import(data); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	notes, err := s2.ListNotes(StatusDefault)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 restored note, got %d", len(notes))
	}
	if notes[0].Content != "alpha" || !notes[0].IsFavorite {
		t.Errorf("restored note mismatch: %+v", notes[0])
	}

	if got := s2.Setting("seen_welcome"); got != "true" {
		t.Errorf("expected restored setting true, got %q", got)
	}

	options, err := s2.ListOptions(OptionColor)
	if err != nil {
		t.Fatalf("ListOptions failed: %v", err)
	}
	if len(options) != 1 || options[0].Name != "Teal" {
		t.Errorf("restored options mismatch: %+v", options)
	}

	if asset := s2.Asset("logo"); asset == nil || asset.Type != AssetImage {
		t.Errorf("restored asset mismatch: %+v", asset)
	}
}

func TestPersistAfterEveryMutation(t *testing.T) {
	p := &memPersister{}
	s, err := Open(Config{Persister: p})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	before := p.saves
	id, err := s.AddNote("durable", StatusDefault)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if p.saves <= before {
		t.Fatal("AddNote did not persist a snapshot")
	}

	// By the time the call returns, the durable copy reflects the mutation.
	s2, err := Open(Config{Persister: &memPersister{data: p.snapshot()}})
	if err != nil {
		t.Fatalf("Open from snapshot failed: %v", err)
	}
	defer s2.Close()

	notes, err := s2.ListNotes(StatusDefault)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != id || notes[0].Content != "durable" {
		t.Errorf("snapshot did not reflect the mutation: %+v", notes)
	}
}

func TestOpenWithCorruptSnapshot(t *testing.T) {
	p := &memPersister{data: []byte("{not json")}
	s, err := Open(Config{Persister: p})
	if err != nil {
		t.Fatalf("Open should fall back to a fresh database, got: %v", err)
	}
	defer s.Close()

	notes, err := s.ListNotes(StatusDefault)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected empty fallback database, got %d notes", len(notes))
	}

	// The fallback store must still accept writes.
	if _, err := s.AddNote("recovered", StatusDefault); err != nil {
		t.Fatalf("AddNote after fallback failed: %v", err)
	}
}

func TestRestoreOldSnapshotShape(t *testing.T) {
	// Snapshots written by older revisions have no previousStatus field and
	// may carry space-separated timestamps.
	old := []byte(`{"notes":[{"id":1,"content":"legacy","status":"archived","isFavorite":false,"createdAt":"2023-04-01 10:30:00","updatedAt":"2023-04-01 10:30:00"}],"settings":null,"options":null,"assets":null}`)

	s := openTestStore(t)
	if err := s.Import(old); err != nil {
		t.Fatalf("Import of legacy snapshot failed: %v", err)
	}

	notes, err := s.ListNotes(StatusArchived)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 legacy note, got %d", len(notes))
	}
	if notes[0].PreviousStatus != StatusDefault {
		t.Errorf("missing previous status should default, got %q", notes[0].PreviousStatus)
	}
	if notes[0].CreatedAt != "2023-04-01T10:30:00.000Z" {
		t.Errorf("timestamp not normalized: %q", notes[0].CreatedAt)
	}
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	p := &failingPersister{}
	s, err := Open(Config{Persister: p})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	// The write itself must succeed even though mirroring fails.
	id, err := s.AddNote("kept in memory", StatusDefault)
	if err != nil {
		t.Fatalf("AddNote should not surface persist failures: %v", err)
	}

	notes, err := s.ListNotes(StatusDefault)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != id {
		t.Errorf("in-memory state lost after persist failure: %+v", notes)
	}
}

type failingPersister struct{}

func (*failingPersister) Load() ([]byte, bool, error) { return nil, false, nil }
func (*failingPersister) Save([]byte) error {
	return errQuota
}

var errQuota = &quotaError{}

type quotaError struct{}

func (*quotaError) Error() string { return "quota exceeded" }
