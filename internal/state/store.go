// Package state persists the user's deny and allow lists between runs.
//
// The lists are stored as YAML. Every read-modify-write cycle holds an
// exclusive file lock next to the state file, and writes go through a temp
// file plus rename so readers never see a partial document.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/bethropolis/repoprompt/internal/patterns"
)

// ErrNoPath is returned when a Store has no file path
var ErrNoPath = errors.New("state: no state file path")

// Store reads and writes pattern lists at a fixed path
type Store struct {
	path string
	lock *flock.Flock
}

// DefaultPath returns the state file location under the user config dir
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("state: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "repoprompt", "state.yaml"), nil
}

// New creates a Store for path
func New(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the state file path
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored lists. A missing file yields empty lists.
func (s *Store) Load() (*patterns.Lists, error) {
	if s.path == "" {
		return nil, ErrNoPath
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	return s.read()
}

// Save replaces the stored lists
func (s *Store) Save(lists *patterns.Lists) error {
	if s.path == "" {
		return ErrNoPath
	}
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	return s.write(lists)
}

// Update loads the lists, applies fn and saves the result under one lock.
// Nothing is written when fn returns an error.
func (s *Store) Update(fn func(*patterns.Lists) error) (*patterns.Lists, error) {
	if s.path == "" {
		return nil, ErrNoPath
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	lists, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := fn(lists); err != nil {
		return nil, err
	}
	if err := s.write(lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (s *Store) acquire() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("state: create directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("state: failed to acquire lock on %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) release() {
	_ = s.lock.Unlock()
}

func (s *Store) read() (*patterns.Lists, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return patterns.NewLists(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", s.path, err)
	}

	var snap patterns.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("state: parse %s: %w", s.path, err)
	}
	return snap.Lists(), nil
}

func (s *Store) write(lists *patterns.Lists) error {
	data, err := yaml.Marshal(lists.Snapshot())
	if err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}
	return atomicWrite(s.path, data)
}

// atomicWrite writes data to a temp file in the target directory and
// renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("state: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Ensure temp file is cleaned up on error
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("state: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("state: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("state: set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("state: rename temp file to %s: %w", path, err)
	}

	tmp = nil
	return nil
}
