package client

import (
	"encoding/json"
	"os"
	"sync"
)

// Fixed storage keys, kept from the web client's local storage layout
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// TokenStore holds the access/refresh credential pair. It is the only
// durable client-side state.
type TokenStore interface {
	Access() string
	Refresh() string
	SetPair(access, refresh string) error
	Clear() error
}

// MemoryTokenStore keeps the pair in memory, mostly for tests and
// short-lived tools
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryTokenStore creates an empty in-memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryTokenStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetPair(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.SetPair("", "")
}

// FileTokenStore persists the pair as a small JSON file under the fixed
// storage keys
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a store backed by the given file path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) read() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return map[string]string{}
	}
	return stored
}

func (s *FileTokenStore) Access() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()[AccessTokenKey]
}

func (s *FileTokenStore) Refresh() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()[RefreshTokenKey]
}

func (s *FileTokenStore) SetPair(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(map[string]string{
		AccessTokenKey:  access,
		RefreshTokenKey: refresh,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
