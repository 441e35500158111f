package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

// IdentityClient implements IdentityService against the concierge auth
// endpoints. It caches the issued token for the session; AuthProvider
// still re-reads it on every request so a sign-out takes effect
// immediately.
type IdentityClient struct {
	baseURL string
	http    *http.Client

	mu       sync.RWMutex
	token    string
	identity Identity
}

func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (Identity, error) {
	return c.authenticate(ctx, "/auth/login", types.LoginRequest{Email: email, Password: password})
}

func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (Identity, error) {
	return c.authenticate(ctx, "/auth/register", types.RegisterRequest{Email: email, Password: password})
}

func (c *IdentityClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.token = ""
	c.identity = Identity{}
	c.mu.Unlock()
	return nil
}

func (c *IdentityClient) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, nil
}

func (c *IdentityClient) authenticate(ctx context.Context, path string, body interface{}) (Identity, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Identity{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized:
		return Identity{}, ErrInvalidCredentials
	case resp.StatusCode == http.StatusConflict:
		return Identity{}, ErrEmailInUse
	case resp.StatusCode == http.StatusBadRequest:
		return Identity{}, ErrWeakSecret
	default:
		return Identity{}, fmt.Errorf("auth request failed: %s", resp.Status)
	}

	var tok types.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return Identity{}, err
	}
	id := Identity{UID: tok.UserID, DisplayName: tok.DisplayName}

	c.mu.Lock()
	c.token = tok.Token
	c.identity = id
	c.mu.Unlock()
	return id, nil
}
