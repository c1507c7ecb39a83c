package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store reads and writes the shared work registry file. It performs no
// locking of its own: callers must wrap load-mutate-save sequences in the
// exclusive file lock guarding the registry, or concurrent writers will
// lose updates.
//
// The registry file is the single source of truth for work item status.
// Lock records and heartbeats are evidence about claims, never authority.
type Store struct {
	path string
}

// NewStore creates a Store for the registry file at the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry snapshot from disk. A missing file is not an
// error; it loads as an empty registry.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Tasks: []WorkItem{}}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", s.path, err)
	}
	if snap.Tasks == nil {
		snap.Tasks = []WorkItem{}
	}
	return &snap, nil
}

// Save writes the snapshot as pretty JSON. The write is atomic: data is
// written to a temporary file first, then renamed into place, so readers
// never observe a partially written registry.
func (s *Store) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
