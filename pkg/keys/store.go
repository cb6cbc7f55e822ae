package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"indexnow-go/pkg/logger"
)

// Store persists the host -> key mapping as a single JSON object. It is
// safe for concurrent use within one process; concurrent runs from separate
// processes can race on the file, an accepted risk for a single-operator
// tool.
type Store struct {
	path string
	mu   sync.Mutex
	log  *logger.Logger
}

// DefaultStorePath returns the per-user key store location.
func DefaultStorePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "indexnow-go", "keys.json"), nil
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		log:  logger.GetLogger().WithField("component", "key_store"),
	}
}

// Get returns the persisted key for host, if any.
func (s *Store) Get(host string) (Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	key, ok := entries[host]
	return key, ok
}

// Put persists the key for host, creating directories on demand.
func (s *Store) Put(host string, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[host] = key

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create key store directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write key store: %w", err)
	}
	return nil
}

// load reads the backing file. A missing or corrupt file is treated as an
// empty store, not an error. Callers must hold the mutex.
func (s *Store) load() map[string]Key {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("Failed to read key store, starting fresh")
		}
		return make(map[string]Key)
	}

	var entries map[string]Key
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.WithError(err).Warn("Corrupt key store, starting fresh")
		return make(map[string]Key)
	}
	if entries == nil {
		entries = make(map[string]Key)
	}
	return entries
}
