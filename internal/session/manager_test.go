package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/models"
)

// fakeAuthServer mimics the auth service's three endpoints and counts hits.
func fakeAuthServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()
	var hits int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(models.SessionUser{ID: "u_1", Name: "Ann", Email: req.Email, Provider: "local"})
	})
	mux.HandleFunc("/api/auth/google", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		var req struct{ Credential string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Credential != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid Google credential"})
			return
		}
		_ = json.NewEncoder(w).Encode(models.SessionUser{ID: "u_g", Name: "Gia", Email: "gia@x.com", Avatar: "http://x/g.png", Provider: "google"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestManager(t *testing.T) (*Manager, Store, *int64) {
	srv, hits := fakeAuthServer(t)
	store := NewMemoryStore()
	return NewManager(NewClient(srv.URL, 5*time.Second), store), store, hits
}

func TestManagerLoginSuccess(t *testing.T) {
	m, store, _ := newTestManager(t)

	u, err := m.Login(context.Background(), "ann@x.com", "right")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if m.State() != StateAuthenticated {
		t.Fatalf("expected authenticated state, got %v", m.State())
	}
	if u.Email != "ann@x.com" || u.Provider != "local" {
		t.Fatalf("unexpected user: %+v", u)
	}

	// successful login persists the full session
	stored, _ := store.Load()
	if stored == nil || *stored != *u {
		t.Fatalf("stored session differs: %+v vs %+v", stored, u)
	}
}

func TestManagerLoginFailureSettlesAnonymous(t *testing.T) {
	m, store, _ := newTestManager(t)

	_, err := m.Login(context.Background(), "ann@x.com", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if m.State() != StateAnonymous {
		t.Fatalf("machine must not stay authenticating, got %v", m.State())
	}
	if m.Current() != nil {
		t.Fatalf("expected no current user")
	}
	if stored, _ := store.Load(); stored != nil {
		t.Fatalf("failed login must not persist a session")
	}
}

func TestManagerGoogleLogin(t *testing.T) {
	m, store, _ := newTestManager(t)

	u, err := m.LoginWithGoogle(context.Background(), "good")
	if err != nil {
		t.Fatalf("google login failed: %v", err)
	}
	if u.Provider != "google" || u.ID != "u_g" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if stored, _ := store.Load(); stored == nil {
		t.Fatal("expected persisted session")
	}

	_, err = m.LoginWithGoogle(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected error for rejected credential")
	}
	if m.State() != StateAnonymous {
		t.Fatalf("expected anonymous after failure, got %v", m.State())
	}
}

func TestManagerRestoreWithoutNetwork(t *testing.T) {
	srv, hits := fakeAuthServer(t)
	store := NewMemoryStore()
	saved := &models.SessionUser{ID: "u_9", Name: "Old", Email: "old@x.com", Provider: "google"}
	_ = store.Save(saved)

	m := NewManager(NewClient(srv.URL, 5*time.Second), store)
	u, err := m.Restore()
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if u == nil || *u != *saved {
		t.Fatalf("expected restored session %+v, got %+v", saved, u)
	}
	if m.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", m.State())
	}
	if atomic.LoadInt64(hits) != 0 {
		t.Fatalf("restore must not hit the network, saw %d requests", *hits)
	}
}

func TestManagerRestoreEmptyStore(t *testing.T) {
	m, _, _ := newTestManager(t)
	u, err := m.Restore()
	if err != nil || u != nil {
		t.Fatalf("expected anonymous restore, got (%+v, %v)", u, err)
	}
	if m.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %v", m.State())
	}
}

func TestManagerLogoutClearsEverything(t *testing.T) {
	m, store, _ := newTestManager(t)

	if _, err := m.Login(context.Background(), "ann@x.com", "right"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	m.Logout()
	if m.State() != StateAnonymous || m.Current() != nil {
		t.Fatalf("expected anonymous after logout")
	}
	if stored, _ := store.Load(); stored != nil {
		t.Fatalf("logout must clear the durable store")
	}

	// logging out while already anonymous is a no-op, not an error
	m.Logout()
	if m.State() != StateAnonymous {
		t.Fatalf("expected anonymous, got %v", m.State())
	}
}
