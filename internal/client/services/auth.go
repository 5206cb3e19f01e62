// Package services holds the client-side state of the signpanel consoles:
// authorization variants, quota, share-form drafts, notifications and the
// admin operations built on the REST client.
//
// State holders are safe for concurrent use.
package services

import (
	"context"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
)

// Authorizer is the contract shared by every authorization variant.
//
//   - Authorized reports whether a usable credential is present.
//   - StartAuth begins the variant's authorization flow, reporting progress
//     through n.
//   - ResetAuth forgets the credential in memory and in storage.
type Authorizer interface {
	Authorized() bool
	StartAuth(ctx context.Context, n Notifier) error
	ResetAuth(ctx context.Context) error
}

// Credential is an Authorizer that can also sign requests and be cleared by
// the REST client after a rejected request.
type Credential interface {
	Authorizer
	client.CredentialSource
	client.CredentialClearer
}

var (
	_ Credential = (*TokenAuth)(nil)
	_ Credential = (*AdminSession)(nil)
	_ Credential = (*JWTSession)(nil)
	_ Authorizer = (*PopupAuth)(nil)

	_ client.Refresher = (*JWTSession)(nil)
)
