package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

const DefaultHandshakeTimeout = 30 * time.Second

// DefaultStatusPoll confirms a captured session: 3 attempts, 500ms apart.
var DefaultStatusPoll = client.RetryPolicy{MaxAttempts: 3, Backoff: []time.Duration{500 * time.Millisecond}}

var errNotYetAuthorized = errors.New("session not authorized yet")

// AuthAPI is the part of the REST client the popup flow needs.
type AuthAPI interface {
	AuthStart(ctx context.Context) (*models.AuthStart, error)
	AuthStatus(ctx context.Context, sessionID string) (*models.AuthStatus, error)
}

type PopupAuthOptions struct {
	Timeout time.Duration
	Poll    client.RetryPolicy
}

// PopupAuth is the workspace OAuth variant. The user authorizes in a
// browser; the completion page reports a session id to the loopback
// CallbackServer; the session is then confirmed against /auth/status.
type PopupAuth struct {
	api      AuthAPI
	store    *storage.Store
	opener   Opener
	callback *CallbackServer
	log      logging.Logger
	timeout  time.Duration
	poll     client.RetryPolicy

	mu         sync.RWMutex
	sessionID  string
	authorized bool
}

func NewPopupAuth(ctx context.Context, api AuthAPI, store *storage.Store, opener Opener, callback *CallbackServer, opts PopupAuthOptions, log logging.Logger) (*PopupAuth, error) {
	if log == nil {
		log = logging.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultHandshakeTimeout
	}
	if opts.Poll.MaxAttempts == 0 {
		opts.Poll = DefaultStatusPoll
	}
	sessionID, err := store.String(ctx, storage.KeySessionID)
	if err != nil {
		return nil, err
	}
	return &PopupAuth{
		api:       api,
		store:     store,
		opener:    opener,
		callback:  callback,
		log:       log,
		timeout:   opts.Timeout,
		poll:      opts.Poll,
		sessionID: sessionID,
	}, nil
}

func (a *PopupAuth) Authorized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authorized
}

func (a *PopupAuth) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// Check asks the backend once whether the stored session is authorized.
func (a *PopupAuth) Check(ctx context.Context) (bool, error) {
	id := a.SessionID()
	if id == "" {
		return false, nil
	}
	st, err := a.api.AuthStatus(ctx, id)
	if err != nil {
		return false, err
	}
	a.mu.Lock()
	a.authorized = st.Authorized
	a.mu.Unlock()
	return st.Authorized, nil
}

// StartAuth runs the handshake. Timeouts and an unconfirmed session end in
// a warning, not an error; the captured session id is kept either way.
func (a *PopupAuth) StartAuth(ctx context.Context, n Notifier) error {
	if err := a.callback.Start(); err != nil {
		notify(n, ToastWarning, "cannot receive the authorization callback: "+err.Error())
		return err
	}

	start, err := a.api.AuthStart(ctx)
	if err != nil {
		notify(n, ToastError, "authorization failed: "+client.Detail(err))
		return fmt.Errorf("auth start: %w", err)
	}

	h := NewHandshake()
	a.callback.Attach(h)
	defer a.callback.Attach(nil)

	doneURL := a.callback.URL() + "/auth/done?session_id="
	notifyFor(n, ToastInfo, fmt.Sprintf(
		"after authorizing, open %s<session id shown on the page> within %s", doneURL, a.timeout), a.timeout)

	win, err := a.opener.Open(ctx, start.AuthURL)
	if err != nil {
		notify(n, ToastWarning, "cannot open the authorization page: "+err.Error())
		return err
	}
	a.log.Info(ctx, "waiting for authorization callback", "callback", doneURL, "timeout", a.timeout)

	sessionID, err := h.Wait(ctx, a.timeout)
	if errors.Is(err, ErrHandshakeTimeout) {
		notify(n, ToastWarning, "authorization timed out, please try again")
		return nil
	}
	if err != nil {
		return err
	}

	if err := a.store.SetString(ctx, storage.KeySessionID, sessionID); err != nil {
		return err
	}
	a.mu.Lock()
	a.sessionID = sessionID
	a.mu.Unlock()

	if err := win.Close(); err != nil {
		a.log.Debug(ctx, "closing authorization window", "error", err)
	}

	err = a.poll.Do(ctx, func(ctx context.Context) error {
		st, err := a.api.AuthStatus(ctx, sessionID)
		if err != nil {
			return client.Retryable(err)
		}
		if !st.Authorized {
			return client.Retryable(errNotYetAuthorized)
		}
		return nil
	})
	if err != nil {
		a.log.Warn(ctx, "session not confirmed", "error", err)
		notify(n, ToastWarning, "authorization not confirmed yet, check again shortly")
		return nil
	}

	a.mu.Lock()
	a.authorized = true
	a.mu.Unlock()
	notify(n, ToastSuccess, "authorized")
	return nil
}

func (a *PopupAuth) ResetAuth(ctx context.Context) error {
	a.mu.Lock()
	a.sessionID = ""
	a.authorized = false
	a.mu.Unlock()
	return a.store.Delete(ctx, storage.KeySessionID)
}
