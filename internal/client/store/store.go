// Package store is a string key-value store persisted as a single JSON file
// under the user's config directory. Each logical key (token, user, api key,
// data mode) has exactly one owning component; the store itself does not
// provide multi-key atomicity.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const stateFile = "state.json"

// DefaultDir returns the Preventis config directory for the current user.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".preventis"), nil
}

type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Get returns the value for key. The second return is false when the key has
// never been set.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := state[key]
	return v, ok, nil
}

// Set writes key=value and persists immediately.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state[key] = value
	return s.save(state)
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := state[key]; !ok {
		return nil
	}
	delete(state, key)
	return s.save(state)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state map[string]string
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt state degrades to empty rather than wedging the client.
		return map[string]string{}, nil
	}
	if state == nil {
		state = map[string]string{}
	}
	return state, nil
}

func (s *Store) save(state map[string]string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Restrictive permissions, the file holds the session token.
	if err := os.WriteFile(filepath.Join(s.dir, stateFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}
