package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/signpanel/internal/logging"
)

const (
	// DevBaseURL is the backend address used in development.
	DevBaseURL     = "http://localhost:8000"
	DefaultTimeout = 20 * time.Second

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ResolveBaseURL picks the backend address: an explicit override wins, then
// the development default, then the production origin (which itself falls
// back to the development default when unknown).
func ResolveBaseURL(override, env, origin string) string {
	switch {
	case strings.TrimSpace(override) != "":
		return strings.TrimRight(strings.TrimSpace(override), "/")
	case env == EnvDevelopment || env == "dev":
		return DevBaseURL
	case strings.TrimSpace(origin) != "":
		return strings.TrimRight(strings.TrimSpace(origin), "/")
	default:
		return DevBaseURL
	}
}

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials CredentialSource
	Refresher   Refresher
	// Retry applies to GET requests only; the zero value means
	// DefaultRetryPolicy.
	Retry      RetryPolicy
	Logger     logging.Logger
	HTTPClient *http.Client
}

type RESTClient struct {
	baseURL   string
	http      *http.Client
	creds     CredentialSource
	refresher Refresher
	retry     RetryPolicy
	log       logging.Logger
	queue     *refreshQueue
}

func New(opts Options) *RESTClient {
	c := &RESTClient{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      opts.HTTPClient,
		creds:     opts.Credentials,
		refresher: opts.Refresher,
		retry:     opts.Retry,
		log:       opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DevBaseURL
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.retry.MaxAttempts == 0 {
		c.retry = DefaultRetryPolicy
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	c.queue = &refreshQueue{onFail: c.clearCredentials}
	if c.refresher != nil {
		c.queue.refresh = c.refresher.Refresh
	}
	return c
}

func (c *RESTClient) BaseURL() string { return c.baseURL }

// Request describes one backend call. Body is JSON-encoded once, so the
// request can be replayed after a refresh; RawBody with ContentType is sent
// as is.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	RawBody     []byte
	ContentType string
	// Anonymous requests carry no credential and never trigger a refresh.
	Anonymous bool
}

func (r Request) encode() ([]byte, string, error) {
	if r.RawBody != nil {
		return r.RawBody, r.ContentType, nil
	}
	if r.Body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s %s: %w", r.Method, r.Path, err)
	}
	return b, "application/json", nil
}

// Do performs req and decodes a JSON response into out. out may be nil, or a
// *[]byte to receive the raw body.
func (c *RESTClient) Do(ctx context.Context, req Request, out any) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	body, contentType, err := req.encode()
	if err != nil {
		return err
	}

	policy := NoRetry
	if req.Method == http.MethodGet {
		policy = c.retry
	}

	return policy.Do(ctx, func(ctx context.Context) error {
		err := c.send(ctx, req, body, contentType, out)
		if errors.Is(err, ErrUnavailable) {
			return Retryable(err)
		}
		return err
	})
}

func (c *RESTClient) send(ctx context.Context, req Request, body []byte, contentType string, out any) error {
	gen := c.queue.generation()

	err := c.roundTrip(ctx, req, body, contentType, out)
	if req.Anonymous || !isUnauthenticated(err) {
		return err
	}

	if c.refresher == nil {
		c.clearCredentials(ctx)
		return err
	}

	if rerr := c.queue.wait(ctx, gen); rerr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: refresh credentials: %w", ErrUnauthorized, rerr)
	}

	c.log.Debug(ctx, "replaying request with refreshed credential", "method", req.Method, "path", req.Path)
	return c.roundTrip(ctx, req, body, contentType, out)
}

func isUnauthenticated(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func (c *RESTClient) clearCredentials(ctx context.Context) {
	clearer, ok := c.creds.(CredentialClearer)
	if !ok {
		return
	}
	if err := clearer.ClearCredentials(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear credentials", "error", err)
	}
}

func (c *RESTClient) url(req Request) string {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func (c *RESTClient) roundTrip(ctx context.Context, req Request, body []byte, contentType string, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	u := c.url(req)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if !req.Anonymous && c.creds != nil {
		c.creds.Apply(httpReq.Header)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn(ctx, "request failed", "method", req.Method, "url", u, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrUnavailable, req.Method, req.Path, err)
	}

	c.log.Debug(ctx, "request",
		"method", req.Method,
		"url", u,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(req.Method, req.Path, resp.StatusCode, data)
		c.log.Warn(ctx, "request rejected",
			"method", req.Method,
			"path", req.Path,
			"status", resp.StatusCode,
			"detail", apiErr.Detail,
			"request_id", requestID,
		)
		return apiErr
	}

	return decode(req, data, out)
}

func decode(req Request, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *RESTClient) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: q}, out)
}

func (c *RESTClient) post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *RESTClient) put(ctx context.Context, path string, q url.Values, body any, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Query: q, Body: body}, out)
}

func (c *RESTClient) delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}
