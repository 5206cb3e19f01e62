package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/signpanel/internal/flagx"
)

var flagNames = []string{
	"a", "env", "origin", "t", "public-origin",
	"driver", "dsn", "redis-addr", "namespace", "passphrase",
	"open-id", "tenant-key", "auth", "legacy-table",
	"callback-addr", "handshake-timeout",
	"log-level", "log-format", "export-dir", "s3-bucket",
}

// parseFlags populates Config from command-line flags.
//
// Supported flags:
//
//	-a string               backend base URL
//	-env string             development | production
//	-origin string          page origin used in production
//	-t duration             request timeout
//	-public-origin string   prefix of share links
//	-driver string          sqlite | postgres | redis
//	-dsn string             store connection string
//	-redis-addr string      redis address
//	-namespace string       store profile
//	-passphrase string      encrypts stored values
//	-open-id, -tenant-key   workspace identity
//	-auth string            popup | token | jwt
//	-legacy-table string    table receiving a migrated single token
//	-callback-addr string   loopback listener for authorization callbacks
//	-handshake-timeout dur  how long to wait for the callback
//	-log-level, -log-format logging
//	-export-dir string      where admin exports are saved
//	-s3-bucket string       archive exports to this bucket
//
// Arguments are filtered with flagx.FilterArgs so -c and -env-file, which
// are read elsewhere, do not trip the parser.
func parseFlags(cfg *Config, args []string) {
	allowed := make([]string, 0, len(flagNames)*2)
	for _, n := range flagNames {
		allowed = append(allowed, "-"+n, "--"+n)
	}
	args = flagx.FilterArgs(args, allowed)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBase, "a", cfg.APIBase, "backend base URL")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "environment")
	fs.StringVar(&cfg.Origin, "origin", cfg.Origin, "page origin")
	fs.DurationVar(&cfg.Timeout, "t", cfg.Timeout, "request timeout")
	fs.StringVar(&cfg.PublicOrigin, "public-origin", cfg.PublicOrigin, "share link origin")
	fs.StringVar(&cfg.Storage.Driver, "driver", cfg.Storage.Driver, "store driver")
	fs.StringVar(&cfg.Storage.DSN, "dsn", cfg.Storage.DSN, "store DSN")
	fs.StringVar(&cfg.Storage.RedisAddr, "redis-addr", cfg.Storage.RedisAddr, "redis address")
	fs.StringVar(&cfg.Storage.Namespace, "namespace", cfg.Storage.Namespace, "store profile")
	fs.StringVar(&cfg.Storage.Passphrase, "passphrase", cfg.Storage.Passphrase, "store passphrase")
	fs.StringVar(&cfg.Identity.OpenID, "open-id", cfg.Identity.OpenID, "workspace user id")
	fs.StringVar(&cfg.Identity.TenantKey, "tenant-key", cfg.Identity.TenantKey, "workspace tenant key")
	fs.StringVar(&cfg.AuthMode, "auth", cfg.AuthMode, "plugin authorization variant")
	fs.StringVar(&cfg.LegacyTable, "legacy-table", cfg.LegacyTable, "table for a migrated token")
	fs.StringVar(&cfg.CallbackAddr, "callback-addr", cfg.CallbackAddr, "callback listener address")
	fs.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "callback wait")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text | json")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "export directory")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "export archive bucket")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
