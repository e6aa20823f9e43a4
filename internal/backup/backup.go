// Package backup persists a durable local copy of every submission before
// any external system is contacted. A failed backup write fails the whole
// request; it is the last-resort record of the family's request.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store writes submission payloads as JSON files under a directory.
type Store struct {
	dir string
}

// NewStore creates a backup store rooted at dir. The directory is created on
// first write if absent.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Write marshals payload as indented JSON and writes it to <dir>/<key>.json.
// Any failure is returned to the caller.
func (s *Store) Write(key string, payload any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup %s: %w", key, err)
	}

	path := filepath.Join(s.dir, key+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup %s: %w", key, err)
	}
	return nil
}

// Path returns the file path a given key would be written to.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
