package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/models"
)

// MemoryRepository is an in-memory UserRepository used for unit tests and
// Mongo-less development runs. It enforces the same uniqueness invariants
// as the Mongo indexes.
type MemoryRepository struct {
	mu    sync.RWMutex
	seq   int
	users map[string]*models.User // keyed by ID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func (m *MemoryRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if u.GoogleID != "" && existing.GoogleID == u.GoogleID {
			return nil, ErrConflict
		}
		if u.Provider == models.ProviderLocal && existing.Provider == models.ProviderLocal && existing.Email == u.Email {
			return nil, ErrConflict
		}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.ID == "" {
		m.seq++
		u.ID = fmt.Sprintf("u_%d", m.seq)
	}
	cp := *u
	m.users[u.ID] = &cp
	return u, nil
}

// Count returns the number of stored records matching the email (tests).
func (m *MemoryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
