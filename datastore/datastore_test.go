package datastore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	ds, err := NewWithConfig(DefaultConfig(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ds.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "{}" {
		t.Errorf("file = %q, want {}", raw)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ds, err := NewWithConfig(DefaultConfig(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ds.Add("frases", []string{"uno", "dos"})
	if err := ds.SaveToFile(); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewWithConfig(DefaultConfig(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var got []string
	ok, err := reopened.Decode("frases", &got)
	if err != nil || !ok {
		t.Fatalf("Decode = %v, %v", ok, err)
	}
	if len(got) != 2 || got[0] != "uno" || got[1] != "dos" {
		t.Errorf("got %v", got)
	}

	var top map[string]any
	raw, _ := os.ReadFile(path)
	if err := json.Unmarshal(raw, &top); err != nil {
		t.Fatalf("file is not JSON: %v", err)
	}
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWithConfig(DefaultConfig(path)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}

	if err := os.WriteFile(path, []byte("[1,2]"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWithConfig(DefaultConfig(path)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("array file: err = %v, want ErrCorrupt", err)
	}
}

func TestBackupsArePruned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	cfg := DefaultConfig(path)
	cfg.BackupCount = 2
	ds, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ds.Close()

	for i := range 5 {
		ds.Add("n", i)
		if err := ds.SaveToFile(); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	matches, _ := filepath.Glob(path + ".backup.*")
	if len(matches) != 2 {
		t.Errorf("backups = %d, want 2", len(matches))
	}
}

func TestClosedStore(t *testing.T) {
	ds, err := NewWithConfig(DefaultConfig(filepath.Join(t.TempDir(), "store.json")))
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := ds.SaveToFile(); !errors.Is(err, ErrClosed) {
		t.Errorf("SaveToFile after close = %v", err)
	}
	if _, ok := ds.Get("x"); ok {
		t.Error("Get on closed store should miss")
	}
}
