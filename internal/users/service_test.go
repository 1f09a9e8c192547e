package users

import (
	"context"
	"testing"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/googleauth"
	"github.com/taskpilot/taskpilot/backend/go-services/internal/models"
)

func TestAuthenticateGoogle_FirstLoginCreatesRecord(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	payload := &googleauth.Payload{Subject: "g-1", Name: "Ann", Email: "ann@x.com", Picture: "http://x/p.png"}
	su, err := svc.AuthenticateGoogle(ctx, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if su.Name != "Ann" || su.Email != "ann@x.com" || su.Provider != models.ProviderGoogle {
		t.Fatalf("unexpected session user: %+v", su)
	}
	if su.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if repo.Count() != 1 {
		t.Fatalf("expected exactly one record, got %d", repo.Count())
	}

	stored, err := repo.FindByGoogleID(ctx, "g-1")
	if err != nil || stored == nil {
		t.Fatalf("expected stored record for g-1, got %v err=%v", stored, err)
	}
	if stored.Avatar != "http://x/p.png" {
		t.Fatalf("avatar not copied from payload: %q", stored.Avatar)
	}
}

func TestAuthenticateGoogle_RepeatedLoginIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	payload := &googleauth.Payload{Subject: "g-2", Name: "Bob", Email: "bob@x.com"}
	first, err := svc.AuthenticateGoogle(ctx, payload)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.AuthenticateGoogle(ctx, payload)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same record, got %q and %q", first.ID, second.ID)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one record after repeated login, got %d", repo.Count())
	}
}

func TestAuthenticateGoogle_MissingSubject(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.AuthenticateGoogle(context.Background(), &googleauth.Payload{}); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

// racingRepo simulates a concurrent first login winning the insert: the
// first lookup misses, the create conflicts, and the re-read finds the
// winner's record.
type racingRepo struct {
	winner *models.User
	looked int
}

func (r *racingRepo) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	r.looked++
	if r.looked == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func (r *racingRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (r *racingRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return nil, ErrConflict
}

func TestAuthenticateGoogle_ConflictRereadsWinner(t *testing.T) {
	winner := &models.User{ID: "u_w", GoogleID: "g-3", Name: "Winner", Email: "w@x.com", Provider: models.ProviderGoogle}
	repo := &racingRepo{winner: winner}
	svc := NewService(repo)

	su, err := svc.AuthenticateGoogle(context.Background(), &googleauth.Payload{Subject: "g-3", Name: "Loser"})
	if err != nil {
		t.Fatalf("expected conflict to resolve to winner, got %v", err)
	}
	if su.ID != "u_w" || su.Name != "Winner" {
		t.Fatalf("expected winner's projection, got %+v", su)
	}
}

func TestRegisterLocal_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "a@b.com", "pw"); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if err := svc.RegisterLocal(ctx, "a@b.com", "pw2"); err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected one record, got %d", repo.Count())
	}
}

func TestRegisterLocal_StoresHashNotSecret(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "c@d.com", "hunter2"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	u, err := repo.FindByEmail(ctx, "c@d.com")
	if err != nil || u == nil {
		t.Fatalf("expected stored record, err=%v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "hunter2" {
		t.Fatalf("expected hashed secret, got %q", u.PasswordHash)
	}
}

func TestAuthenticateLocal(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.RegisterLocal(ctx, "e@f.com", "right"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	su, err := svc.AuthenticateLocal(ctx, "e@f.com", "right")
	if err != nil {
		t.Fatalf("expected login to succeed: %v", err)
	}
	if su.Email != "e@f.com" || su.Provider != models.ProviderLocal {
		t.Fatalf("unexpected session user: %+v", su)
	}

	if _, err := svc.AuthenticateLocal(ctx, "e@f.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.AuthenticateLocal(ctx, "nobody@f.com", "right"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
