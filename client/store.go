package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store is durable client-side key-value storage, the localStorage analog.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// CookieStore is the cookie analog: a second, independent persistence
// surface the bypass signal is mirrored into so it survives storage
// clearing between navigations.
type CookieStore interface {
	Cookie(name string) (string, bool)
	SetCookie(name, value string)
	ClearCookie(name string)
}

// MemoryStore is an in-memory Store and CookieStore, used for tests and
// for sessions that do not need persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[string]string
	cookies map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  make(map[string]string),
		cookies: make(map[string]string),
	}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

func (s *MemoryStore) Cookie(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cookies[name]
	return v, ok
}

func (s *MemoryStore) SetCookie(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies[name] = value
}

func (s *MemoryStore) ClearCookie(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cookies, name)
}

// FileStore persists keys as a single JSON document under the given path.
// Writes are flushed immediately; a lost write only ever costs a re-auth.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		// Corrupt state file: start fresh rather than failing the session.
		s.values = make(map[string]string)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.flush()
}

func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.flush()
}

func (s *FileStore) flush() {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}
