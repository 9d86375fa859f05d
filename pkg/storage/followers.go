package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoData is returned by Load when no Follower List has been stored yet
var ErrNoData = errors.New("no follower list stored")

// CorruptError reports a Follower List file that cannot be decoded
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("follower list %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// FollowerStore reads and replaces the Follower List file
type FollowerStore struct {
	path string
	mu   sync.Mutex
}

// NewFollowerStore creates a store backed by path
func NewFollowerStore(path string) *FollowerStore {
	return &FollowerStore{path: path}
}

// Path returns the file the store writes to
func (s *FollowerStore) Path() string {
	return s.path
}

// Name returns the base name of the backing file
func (s *FollowerStore) Name() string {
	return filepath.Base(s.path)
}

// Exists reports whether a Follower List has been stored
func (s *FollowerStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save atomically replaces the stored list with usernames
func (s *FollowerStore) Save(usernames []string) error {
	if usernames == nil {
		usernames = []string{}
	}

	data, err := json.Marshal(usernames)
	if err != nil {
		return fmt.Errorf("failed to encode follower list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Create temporary file first, in the same directory so rename is atomic
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write follower list: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync follower list: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// Load returns the stored list in stored order
func (s *FollowerStore) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to read follower list: %w", err)
	}

	var usernames []string
	if err := json.Unmarshal(data, &usernames); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}

	// A literal null decodes without error
	if usernames == nil {
		return nil, &CorruptError{Path: s.path, Err: errors.New("expected a JSON array")}
	}

	return usernames, nil
}
