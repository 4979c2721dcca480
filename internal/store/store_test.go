package store

import (
	"os"
	"path/filepath"
	"testing"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "state.json"), "state.json")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := tempStore(t)

	in := payload{Name: "reel", Items: []string{"a", "b"}}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out payload
	found, err := s.Load(&out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("Load found = false, want true")
	}
	if out.Name != "reel" || len(out.Items) != 2 {
		t.Errorf("Load = %+v, want %+v", out, in)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := tempStore(t)

	var out payload
	found, err := s.Load(&out)
	if err != nil {
		t.Errorf("Load on missing file returned error: %v", err)
	}
	if found {
		t.Error("Load found = true on missing file, want false")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := tempStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var out payload
	if _, err := s.Load(&out); err == nil {
		t.Error("Load on corrupt file returned nil error")
	}
}

func TestDeleteAndExists(t *testing.T) {
	s := tempStore(t)

	if s.Exists() {
		t.Error("Exists = true before save")
	}
	if err := s.Save(payload{Name: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Exists() {
		t.Error("Exists = false after save")
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists() {
		t.Error("Exists = true after delete")
	}
	// Deleting twice is not an error
	if err := s.Delete(); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
