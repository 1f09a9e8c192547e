package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/googleauth"
	"github.com/taskpilot/taskpilot/backend/go-services/internal/models"
)

// ErrInvalidCredentials is returned for a failed local login. Unknown email
// and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// AuthenticateGoogle finds or creates the user record for a verified Google
// identity payload and returns its session projection. A concurrent first
// login racing this one loses the insert on the unique googleId index; the
// loser re-reads and returns the winner's record, so at most one record per
// subject id ever exists.
func (s *Service) AuthenticateGoogle(ctx context.Context, p *googleauth.Payload) (*models.SessionUser, error) {
	if p == nil || p.Subject == "" {
		return nil, errors.New("payload has no subject")
	}
	u, err := s.repo.FindByGoogleID(ctx, p.Subject)
	if err != nil {
		return nil, fmt.Errorf("lookup by google id: %w", err)
	}
	if u == nil {
		u, err = s.repo.Create(ctx, &models.User{
			GoogleID: p.Subject,
			Name:     p.Name,
			Email:    p.Email,
			Avatar:   p.Picture,
			Provider: models.ProviderGoogle,
		})
		if errors.Is(err, ErrConflict) {
			u, err = s.repo.FindByGoogleID(ctx, p.Subject)
			if err == nil && u == nil {
				err = fmt.Errorf("record vanished after conflict for subject %s", p.Subject)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	return u.SessionUser(), nil
}

// RegisterLocal creates a local-credential user with an argon2id password
// hash. Returns ErrConflict when the email is already taken. Registration
// has no session side effect.
func (s *Service) RegisterLocal(ctx context.Context, email, password string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup by email: %w", err)
	}
	if existing != nil {
		return ErrConflict
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	// The unique email index backstops the pre-check under concurrency.
	_, err = s.repo.Create(ctx, &models.User{
		Email:        email,
		Provider:     models.ProviderLocal,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// AuthenticateLocal verifies a local email/password credential and returns
// the session projection on success.
func (s *Service) AuthenticateLocal(ctx context.Context, email, password string) (*models.SessionUser, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}
	if u == nil || u.Provider != models.ProviderLocal || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	ok, err := VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u.SessionUser(), nil
}
