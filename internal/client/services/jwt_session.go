package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// UserIniter issues bearer tokens for an identity.
type UserIniter interface {
	InitUser(ctx context.Context, id models.Identity) (*models.UserInit, error)
}

// JWTSession is the bearer-token variant. It doubles as the REST client's
// Refresher: a refresh re-registers the configured identity.
type JWTSession struct {
	store    *storage.Store
	identity models.Identity
	bearer   *client.BearerCredentials
	log      logging.Logger

	mu     sync.RWMutex
	initer UserIniter
	expiry time.Time
}

// timeNow is swapped in tests.
var timeNow = time.Now

func NewJWTSession(ctx context.Context, store *storage.Store, identity models.Identity, log logging.Logger) (*JWTSession, error) {
	if log == nil {
		log = logging.Nop()
	}
	token, err := store.String(ctx, storage.KeyPluginJWT)
	if err != nil {
		return nil, err
	}
	expiry, ok, err := store.Time(ctx, storage.KeyPluginJWTExpiry)
	if err != nil {
		log.Warn(ctx, "ignoring unreadable token expiry", "error", err)
	}
	if !ok && token != "" {
		expiry, _ = TokenExpiry(token)
	}
	return &JWTSession{
		store:    store,
		identity: identity,
		bearer:   client.NewBearerCredentials(token),
		log:      log,
		expiry:   expiry,
	}, nil
}

// Attach sets the client used to obtain tokens. The REST client needs the
// session as its Refresher, so the two are wired after construction.
func (s *JWTSession) Attach(initer UserIniter) {
	s.mu.Lock()
	s.initer = initer
	s.mu.Unlock()
}

// TokenExpiry reads the exp claim without verifying the signature; the
// backend owns the key.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

func (s *JWTSession) Token() string { return s.bearer.Token() }

func (s *JWTSession) Expiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiry
}

// Authorized reports a token that has not expired. A token without a known
// expiry is trusted until the backend rejects it.
func (s *JWTSession) Authorized() bool {
	if s.Token() == "" {
		return false
	}
	exp := s.Expiry()
	return exp.IsZero() || timeNow().Before(exp)
}

// Refresh obtains and stores a new token.
func (s *JWTSession) Refresh(ctx context.Context) error {
	s.mu.RLock()
	initer := s.initer
	s.mu.RUnlock()
	if initer == nil {
		return fmt.Errorf("%w: no token issuer attached", client.ErrUnauthorized)
	}
	if err := ValidateUserInfo(&s.identity).Err(); err != nil {
		return err
	}

	res, err := initer.InitUser(ctx, s.identity)
	if err != nil {
		return fmt.Errorf("init user: %w", err)
	}
	if res.Token == "" {
		return fmt.Errorf("%w: empty token issued", client.ErrUnauthorized)
	}

	var expiry time.Time
	if res.ExpiresIn > 0 {
		expiry = timeNow().Add(time.Duration(res.ExpiresIn) * time.Second)
	} else if exp, err := TokenExpiry(res.Token); err == nil {
		expiry = exp
	}

	values := map[storage.Key]string{storage.KeyPluginJWT: res.Token}
	if !expiry.IsZero() {
		values[storage.KeyPluginJWTExpiry] = storage.FormatTime(expiry)
	}
	if err := s.store.SetStrings(ctx, values); err != nil {
		return err
	}
	if expiry.IsZero() {
		if err := s.store.Delete(ctx, storage.KeyPluginJWTExpiry); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.expiry = expiry
	s.mu.Unlock()
	s.bearer.Set(res.Token)

	s.log.Info(ctx, "bearer token issued", "user_id", res.UserID, "expires_at", expiry)
	return nil
}

func (s *JWTSession) StartAuth(ctx context.Context, n Notifier) error {
	if err := s.Refresh(ctx); err != nil {
		notify(n, ToastError, "authorization failed: "+client.Detail(err))
		return err
	}
	notify(n, ToastSuccess, "authorized")
	return nil
}

func (s *JWTSession) ResetAuth(ctx context.Context) error {
	s.bearer.Set("")
	s.mu.Lock()
	s.expiry = time.Time{}
	s.mu.Unlock()
	return s.store.Delete(ctx, storage.KeyPluginJWT, storage.KeyPluginJWTExpiry)
}

func (s *JWTSession) Apply(h http.Header) { s.bearer.Apply(h) }

func (s *JWTSession) ClearCredentials(ctx context.Context) error { return s.ResetAuth(ctx) }
