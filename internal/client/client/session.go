package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

// AuthStart asks the backend for a workspace authorization URL.
func (c *RESTClient) AuthStart(ctx context.Context) (*models.AuthStart, error) {
	var out models.AuthStart
	if err := c.Do(ctx, Request{Path: "/auth/start", Anonymous: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) AuthStatus(ctx context.Context, sessionID string) (*models.AuthStatus, error) {
	var out models.AuthStatus
	q := url.Values{"session_id": {sessionID}}
	if err := c.Do(ctx, Request{Path: "/auth/status", Query: q, Anonymous: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitUser registers the identity and returns a fresh bearer token.
func (c *RESTClient) InitUser(ctx context.Context, id models.Identity) (*models.UserInit, error) {
	var out models.UserInit
	req := Request{Method: http.MethodPost, Path: "/api/user/init", Body: id, Anonymous: true}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) Health(ctx context.Context) error {
	return c.Do(ctx, Request{Path: "/healthz", Anonymous: true}, nil)
}
