package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// AdminSession is the admin console credential: an optional username and a
// token (the admin password).
type AdminSession struct {
	store *storage.Store
	creds *client.AdminCredentials
	log   logging.Logger
}

func NewAdminSession(ctx context.Context, store *storage.Store, log logging.Logger) (*AdminSession, error) {
	if log == nil {
		log = logging.Nop()
	}
	username, err := store.String(ctx, storage.KeyAdminUsername)
	if err != nil {
		return nil, err
	}
	token, err := store.String(ctx, storage.KeyAdminToken)
	if err != nil {
		return nil, err
	}
	return &AdminSession{
		store: store,
		creds: client.NewAdminCredentials(username, token),
		log:   log,
	}, nil
}

// Login stores both halves of the credential.
func (s *AdminSession) Login(ctx context.Context, username, token string) error {
	err := s.store.SetStrings(ctx, map[storage.Key]string{
		storage.KeyAdminUsername: username,
		storage.KeyAdminToken:    token,
	})
	if err != nil {
		return err
	}
	s.creds.Set(username, token)
	s.log.Info(ctx, "admin credentials saved", "username", username)
	return nil
}

// SetToken stores a token without a username, as older consoles did.
func (s *AdminSession) SetToken(ctx context.Context, token string) error {
	if err := s.store.SetString(ctx, storage.KeyAdminToken, token); err != nil {
		return err
	}
	username, _ := s.creds.Get()
	s.creds.Set(username, token)
	return nil
}

func (s *AdminSession) LoggedIn() bool {
	_, token := s.creds.Get()
	return token != ""
}

func (s *AdminSession) Username() string {
	username, _ := s.creds.Get()
	return username
}

func (s *AdminSession) Token() string {
	_, token := s.creds.Get()
	return token
}

// Logout removes both keys.
func (s *AdminSession) Logout(ctx context.Context) error {
	s.creds.Set("", "")
	return s.store.Delete(ctx, storage.KeyAdminUsername, storage.KeyAdminToken)
}

func (s *AdminSession) Authorized() bool { return s.LoggedIn() }

func (s *AdminSession) StartAuth(ctx context.Context, n Notifier) error {
	notify(n, ToastInfo, `log in with "login <username>"`)
	return nil
}

func (s *AdminSession) ResetAuth(ctx context.Context) error { return s.Logout(ctx) }

func (s *AdminSession) Apply(h http.Header) { s.creds.Apply(h) }

func (s *AdminSession) ClearCredentials(ctx context.Context) error {
	s.log.Warn(ctx, "admin credentials rejected, logging out")
	return s.Logout(ctx)
}
