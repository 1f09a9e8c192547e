package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/backend/go-services/internal/models"
)

// APIError is a non-2xx response from the auth service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.Status, e.Message)
}

// Client is a typed HTTP client for the auth service endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. http://localhost:5000).
// Requests are bounded by the given timeout; zero means 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login verifies a local credential and returns the session user.
func (c *Client) Login(ctx context.Context, email, password string) (*models.SessionUser, error) {
	return c.postForUser(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

// LoginWithGoogle sends the Google ID token for verification and returns
// the session user.
func (c *Client) LoginWithGoogle(ctx context.Context, credential string) (*models.SessionUser, error) {
	return c.postForUser(ctx, "/api/auth/google", map[string]string{"credential": credential})
}

// Signup registers a local user. It does not return a session.
func (c *Client) Signup(ctx context.Context, email, password string) error {
	_, err := c.post(ctx, "/api/auth/signup", map[string]string{"email": email, "password": password}, http.StatusCreated)
	return err
}

func (c *Client) postForUser(ctx context.Context, path string, payload map[string]string) (*models.SessionUser, error) {
	body, err := c.post(ctx, path, payload, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var u models.SessionUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &u, nil
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string, wantStatus int) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(buf.Bytes(), &apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	return buf.Bytes(), nil
}
