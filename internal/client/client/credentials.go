package client

import (
	"context"
	"net/http"
	"sync"
)

const (
	HeaderAdminUsername = "X-Admin-Username"
	HeaderAdminToken    = "X-Admin-Token"
	HeaderAuthorization = "Authorization"
	HeaderBaseToken     = "X-Base-Token"
	HeaderRequestID     = "X-Request-ID"
)

// CredentialSource adds one kind of credential to outgoing requests.
type CredentialSource interface {
	Apply(h http.Header)
}

// CredentialClearer is implemented by sources that can forget their
// credential after the backend rejects it.
type CredentialClearer interface {
	ClearCredentials(ctx context.Context) error
}

// Refresher obtains a new credential for the client's source.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CredentialFunc adapts a function returning the header value.
type CredentialFunc func(h http.Header)

func (f CredentialFunc) Apply(h http.Header) { f(h) }

// AdminCredentials sends the admin username (when set) and token.
type AdminCredentials struct {
	mu       sync.RWMutex
	username string
	token    string
}

func NewAdminCredentials(username, token string) *AdminCredentials {
	return &AdminCredentials{username: username, token: token}
}

func (c *AdminCredentials) Set(username, token string) {
	c.mu.Lock()
	c.username, c.token = username, token
	c.mu.Unlock()
}

func (c *AdminCredentials) Get() (username, token string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username, c.token
}

func (c *AdminCredentials) Apply(h http.Header) {
	username, token := c.Get()
	if username != "" {
		h.Set(HeaderAdminUsername, username)
	}
	h.Set(HeaderAdminToken, token)
}

// BearerCredentials sends "Authorization: Bearer <token>".
type BearerCredentials struct {
	mu    sync.RWMutex
	token string
}

func NewBearerCredentials(token string) *BearerCredentials {
	return &BearerCredentials{token: token}
}

func (c *BearerCredentials) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *BearerCredentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *BearerCredentials) Apply(h http.Header) {
	if t := c.Token(); t != "" {
		h.Set(HeaderAuthorization, "Bearer "+t)
	}
}

// BaseTokenCredentials sends the per-table access token returned by Token.
type BaseTokenCredentials struct {
	Token func() string
}

func (c BaseTokenCredentials) Apply(h http.Header) {
	if c.Token == nil {
		return
	}
	if t := c.Token(); t != "" {
		h.Set(HeaderBaseToken, t)
	}
}
