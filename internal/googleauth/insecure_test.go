package googleauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func craftToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	b, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return header + "." + payload + "."
}

func TestInsecureVerifier_ExtractsPayload(t *testing.T) {
	tok := craftToken(t, map[string]interface{}{
		"sub":     "g-1",
		"name":    "Ann",
		"email":   "ann@x.com",
		"picture": "http://x/p.png",
	})

	p, err := NewInsecureVerifier().Verify(context.Background(), tok)
	assert.NoError(t, err)
	assert.Equal(t, "g-1", p.Subject)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, "ann@x.com", p.Email)
	assert.Equal(t, "http://x/p.png", p.Picture)
}

func TestInsecureVerifier_MissingSub(t *testing.T) {
	tok := craftToken(t, map[string]interface{}{"email": "ann@x.com"})
	_, err := NewInsecureVerifier().Verify(context.Background(), tok)
	assert.Error(t, err)
}

func TestInsecureVerifier_MalformedToken(t *testing.T) {
	_, err := NewInsecureVerifier().Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}
