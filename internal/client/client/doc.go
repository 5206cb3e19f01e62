// Package client is the HTTP client for the signing backend.
//
// # Overview
//
// RESTClient wraps net/http with the behaviour every console needs:
//   - base URL selection (ResolveBaseURL),
//   - one CredentialSource per client, applied to every non-anonymous request,
//   - request ids and debug logging,
//   - a single-flight 401 refresh queue driven by a Refresher,
//   - a RetryPolicy for idempotent requests.
//
// Typed endpoint wrappers (session, quota, billing, forms, admin) sit on top
// of Do.
//
// # Error Handling
//
// Non-2xx responses become *APIError. Its Unwrap maps the status to one of
// the sentinel errors so callers can use errors.Is: ErrUnauthorized,
// ErrNotFound, ErrPaymentRequired, ErrRateLimited, ErrUnavailable.
// Detail(err) returns the message the backend put in the body.
//
// Concurrency & Contexts
//
// A RESTClient is safe for concurrent use. All operations accept a
// context.Context and honour cancellation, except the refresh call itself,
// which outlives the request that triggered it.
package client
