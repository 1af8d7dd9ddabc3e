// secrets/store.go
package secrets

import (
	"os"
	"sort"
	"sync"
)

// Store is the process-wide secret store. Values are installed once near
// startup and read-only afterwards; installs are at-most-once per name.
// An optional flag file extends the at-most-once guarantee across restarts:
// when the file already exists Install refuses every name, and Commit writes
// it after the first successful batch.
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	sealed   bool
	flagFile string
}

func NewStore() *Store {
	return &Store{values: map[string]string{}}
}

// WithFlagFile enables the cross-restart guard. Must be called before any
// Install.
func (s *Store) WithFlagFile(path string) *Store {
	s.mu.Lock()
	s.flagFile = path
	s.mu.Unlock()
	return s
}

// Install records value under name. Returns false without overwriting when
// the name is already present, the store is sealed, or the flag file blocks
// installation.
func (s *Store) Install(name, value string) bool {
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed || s.flagBlocked() {
		return false
	}
	if _, exists := s.values[name]; exists {
		return false
	}
	s.values[name] = value
	return true
}

// Commit writes the flag file, if configured. Call after the startup install
// batch succeeds.
func (s *Store) Commit() error {
	s.mu.RLock()
	path := s.flagFile
	s.mu.RUnlock()
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte("installed\n"), 0o600)
}

// Seal makes the store read-only for the rest of the process lifetime.
func (s *Store) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	v, ok := s.values[name]
	s.mu.RUnlock()
	return v, ok
}

// Installed lists installed names in stable order. Values are never exposed
// in bulk.
func (s *Store) Installed() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (s *Store) flagBlocked() bool {
	if s.flagFile == "" {
		return false
	}
	_, err := os.Stat(s.flagFile)
	return err == nil
}
