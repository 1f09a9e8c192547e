package session

import (
	"context"
	"sync"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/models"
	"github.com/taskpilot/taskpilot/backend/go-services/pkg/logger"
)

// State of the client session machine.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	}
	return "anonymous"
}

// Manager orchestrates login, logout and startup restore against the auth
// service and the durable session store. It holds at most one session.
// Concurrent login calls are not mutually excluded; the last one to settle
// wins the final state.
type Manager struct {
	client *Client
	store  Store

	mu    sync.Mutex
	state State
	user  *models.SessionUser
}

func NewManager(client *Client, store Store) *Manager {
	return &Manager{client: client, store: store, state: StateAnonymous}
}

// Restore adopts a previously stored session without any server round-trip.
// Missing or malformed stored data leaves the manager anonymous.
func (m *Manager) Restore() (*models.SessionUser, error) {
	u, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		m.state = StateAnonymous
		m.user = nil
		return nil, nil
	}
	m.state = StateAuthenticated
	m.user = u
	return u, nil
}

// Login authenticates a local credential against the service. On success the
// session is adopted and persisted; on failure the manager settles anonymous
// and the failure is returned to the caller.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.SessionUser, error) {
	m.setState(StateAuthenticating)
	u, err := m.client.Login(ctx, email, password)
	return m.settle(u, err)
}

// LoginWithGoogle sends the Google credential for verification and adopts
// the resulting session.
func (m *Manager) LoginWithGoogle(ctx context.Context, credential string) (*models.SessionUser, error) {
	m.setState(StateAuthenticating)
	u, err := m.client.LoginWithGoogle(ctx, credential)
	return m.settle(u, err)
}

// Logout clears the in-memory session and the durable store. It succeeds
// regardless of prior state; a store error is logged, not surfaced.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		logger.Warnf("failed to clear session store: %v", err)
	}
}

// Current returns the authenticated user, or nil when anonymous.
func (m *Manager) Current() *models.SessionUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	cp := *m.user
	return &cp
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// settle moves the machine out of Authenticating: to Authenticated with the
// session persisted on success, back to Anonymous on failure. The machine
// never stays in the transient state.
func (m *Manager) settle(u *models.SessionUser, err error) (*models.SessionUser, error) {
	if err != nil {
		m.mu.Lock()
		m.state = StateAnonymous
		m.user = nil
		m.mu.Unlock()
		return nil, err
	}
	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = u
	m.mu.Unlock()
	if serr := m.store.Save(u); serr != nil {
		logger.Warnf("failed to persist session: %v", serr)
	}
	return u, nil
}
