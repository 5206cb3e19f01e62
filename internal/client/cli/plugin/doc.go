// Package plugin is the workspace-side console. It authorizes against the
// backend with one of three variants (popup handshake, per-table access
// token, or signed session token), walks the user through building a share
// form for a table, uploads signature images and shows the user's quota,
// invites and purchases.
package plugin
