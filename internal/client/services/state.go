package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// State is everything a console session shares. Each console root builds
// one and closes it on exit; optional parts stay nil when a console does
// not use them.
type State struct {
	Store      *storage.Store
	Client     *client.RESTClient
	Notifier   Notifier
	Authorizer Authorizer
	Quota      *QuotaHolder
	ShareForm  *ShareForm
	Admin      *AdminService
	Callback   *CallbackServer
	Log        logging.Logger
}

// Close stops the callback listener and closes the store.
func (s *State) Close(ctx context.Context) error {
	var errs []error
	if s.Callback != nil {
		if err := s.Callback.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
