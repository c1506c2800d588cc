package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/appetiteclub/apt"
)

// Store is the persisted client state port. Each surface keeps its own keys
// (last selected restaurant, sound toggle); there is no cross-surface sharing.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// FileStore persists preferences as a flat json map on the operator terminal.
// Values are loaded once at construction and flushed on every Set.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	logger apt.Logger
}

func NewFileStore(path string, logger apt.Logger) (*FileStore, error) {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	store := &FileStore{
		path:   path,
		values: make(map[string]string),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read preferences file %s: %w", path, err)
		}
		return store, nil
	}

	if err := json.Unmarshal(data, &store.values); err != nil {
		// A corrupt file must not brick the board; start clean and log.
		logger.Errorf("preferences file %s is corrupt, starting empty: %v", path, err)
		store.values = make(map[string]string)
	}
	return store, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.flushLocked()
}

// flushLocked writes the whole map through a temp file rename so a crash mid
// write never leaves a truncated preferences file.
func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create preferences dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and ephemeral setups.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
