// Package models defines the payloads exchanged with the signing backend and
// the client-side value types built from them.
package models
