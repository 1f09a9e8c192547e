package googleauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Payload is the verified identity extracted from a Google ID token.
type Payload struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// Verifier validates a raw Google ID token and returns its identity payload.
// Implementations must never return a payload for a token they rejected.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Payload, error)
}

// OIDCVerifier verifies Google ID tokens against the issuer's published
// keys, checking signature, expiry and audience.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer (normally https://accounts.google.com)
// and builds a verifier expecting audience == clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Payload, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	var claims struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	return &Payload{
		Subject: idToken.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	}, nil
}
