// Package store persists the cross-session user state (interest profile
// and seen-content ledger) as JSON files. Reads and writes are
// best-effort: a failure degrades to defaults and is never surfaced to
// playback.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ProfileFileName is the default name for the user profile file.
	ProfileFileName = "user_profile.json"
	// SeenFileName is the default name for the seen-content ledger file.
	SeenFileName = "seen_content_ids.json"
)

// FileStore handles persisting a single JSON document to disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store at the specified path. If path is empty,
// the file lives under the default location (~/.config/reel/<name>).
func NewFileStore(path, name string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(configDir, "reel", name)
	}

	return &FileStore{path: path}, nil
}

// Save persists a value to disk as indented JSON.
func (s *FileStore) Save(v any) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(s.path), err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(s.path), err)
	}

	return nil
}

// Load reads a value from disk. Returns (false, nil) if nothing is
// stored yet.
func (s *FileStore) Load(v any) (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", filepath.Base(s.path), err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", filepath.Base(s.path), err)
	}

	return true, nil
}

// Delete removes the stored file.
func (s *FileStore) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", filepath.Base(s.path), err)
	}
	return nil
}

// Exists returns true if the file exists.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the path to the file.
func (s *FileStore) Path() string {
	return s.path
}
