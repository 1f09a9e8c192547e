package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/models"
)

// Store is the durable slot holding at most one SessionUser, the Go analog
// of the browser's localStorage key. Load returns (nil, nil) when no session
// is stored; malformed contents are discarded, never surfaced.
type Store interface {
	Load() (*models.SessionUser, error)
	Save(u *models.SessionUser) error
	Clear() error
}

// FileStore persists the session as a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*models.SessionUser, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var u models.SessionUser
	if err := json.Unmarshal(b, &u); err != nil || u.ID == "" {
		// corrupt session file: discard and start anonymous
		_ = os.Remove(s.path)
		return nil, nil
	}
	return &u, nil
}

func (s *FileStore) Save(u *models.SessionUser) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, b, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore keeps the session in memory only (tests, throwaway runs).
type MemoryStore struct {
	mu   sync.Mutex
	user *models.SessionUser
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (*models.SessionUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, nil
	}
	cp := *s.user
	return &cp, nil
}

func (s *MemoryStore) Save(u *models.SessionUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.user = &cp
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
