package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

const (
	msgTableRequired   = "table id is required"
	msgConfigureToken  = `configure the access token for this table with "token set" first`
	configurePromptFor = 3 * time.Second
)

// TokenAuth is the manual-token variant: the user pastes a per-table access
// token, and a table counts as authorized when it has one.
type TokenAuth struct {
	store *storage.Store
	log   logging.Logger

	mu      sync.RWMutex
	tokens  map[string]string
	current string
}

// NewTokenAuth loads the stored token map.
func NewTokenAuth(ctx context.Context, store *storage.Store, log logging.Logger) (*TokenAuth, error) {
	if log == nil {
		log = logging.Nop()
	}
	tokens, err := store.TokenMap(ctx)
	if err != nil {
		return nil, err
	}
	return &TokenAuth{store: store, log: log, tokens: tokens}, nil
}

// SetCurrentAppToken selects the active table.
func (a *TokenAuth) SetCurrentAppToken(appToken string) {
	a.mu.Lock()
	a.current = appToken
	a.mu.Unlock()
}

func (a *TokenAuth) CurrentAppToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// CurrentToken is the token of the active table, or "".
func (a *TokenAuth) CurrentToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == "" {
		return ""
	}
	return a.tokens[a.current]
}

func (a *TokenAuth) Authorized() bool {
	return a.CurrentToken() != ""
}

func (a *TokenAuth) StartAuth(ctx context.Context, n Notifier) error {
	notifyFor(n, ToastInfo, msgConfigureToken, configurePromptFor)
	return nil
}

func (a *TokenAuth) ResetAuth(ctx context.Context) error {
	return a.ClearAllBaseTokens(ctx)
}

// save persists next and swaps it in; callers hold a.mu.
func (a *TokenAuth) save(ctx context.Context, next map[string]string) error {
	if err := a.store.SetTokenMap(ctx, next); err != nil {
		return err
	}
	a.tokens = next
	return nil
}

func (a *TokenAuth) copyTokens() map[string]string {
	next := make(map[string]string, len(a.tokens)+1)
	for k, v := range a.tokens {
		next[k] = v
	}
	return next
}

// SetBaseToken stores token for appToken; an empty token removes it.
func (a *TokenAuth) SetBaseToken(ctx context.Context, appToken, token string, n Notifier) error {
	if appToken == "" {
		a.log.Warn(ctx, "token not saved", "reason", msgTableRequired)
		notify(n, ToastWarning, msgTableRequired)
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.copyTokens()
	if token == "" {
		delete(next, appToken)
	} else {
		next[appToken] = token
	}
	if err := a.save(ctx, next); err != nil {
		return err
	}
	a.log.Debug(ctx, "access token updated", "table", appToken, "configured", len(next))
	return nil
}

// BaseToken returns the token for appToken, or "".
func (a *TokenAuth) BaseToken(appToken string) string {
	if appToken == "" {
		return ""
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tokens[appToken]
}

func (a *TokenAuth) HasBaseTokenFor(appToken string) bool {
	return a.BaseToken(appToken) != ""
}

func (a *TokenAuth) ClearBaseToken(ctx context.Context, appToken string, n Notifier) error {
	if appToken == "" {
		a.log.Warn(ctx, "token not cleared", "reason", msgTableRequired)
		notify(n, ToastWarning, msgTableRequired)
		return nil
	}
	return a.SetBaseToken(ctx, appToken, "", n)
}

func (a *TokenAuth) ClearAllBaseTokens(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.save(ctx, map[string]string{})
}

// ConfiguredCount is the number of tables with a token.
func (a *TokenAuth) ConfiguredCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.tokens)
}

// Apply sends the active table's token.
func (a *TokenAuth) Apply(h http.Header) {
	client.BaseTokenCredentials{Token: a.CurrentToken}.Apply(h)
}

// ClearCredentials drops the active table's token after the backend
// rejected it.
func (a *TokenAuth) ClearCredentials(ctx context.Context) error {
	current := a.CurrentAppToken()
	if current == "" {
		return nil
	}
	return a.SetBaseToken(ctx, current, "", nil)
}
