package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StateFile persists the three session entries (token, user, role) as a
// single JSON document so they are always written and cleared together.
// Writes go through a temp file and rename; a crash mid-write can never
// leave a partial entry set behind.
type StateFile struct {
	path string
}

// NewStateFile points the store's durable storage at path. The parent
// directory is created on first write.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Read returns the persisted entries. A missing file yields an empty
// map, not an error; the session is simply absent.
func (f *StateFile) Read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("session: read state: %w", err)
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("session: decode state: %w", err)
	}
	return entries, nil
}

// Write replaces the whole entry set atomically.
func (f *StateFile) Write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode state: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session: create temp state: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("session: write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: close temp state: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: chmod state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: replace state: %w", err)
	}
	return nil
}

// Clear removes the persisted entries. Clearing an absent state is a
// no-op.
func (f *StateFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clear state: %w", err)
	}
	return nil
}
