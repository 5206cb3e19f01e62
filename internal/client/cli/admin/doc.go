// Package admin is the administrative console: dashboard, users, share
// forms, invite codes, orders, pricing plans, signature logs and
// spreadsheet exports. Every page except login needs a saved admin
// credential.
package admin
