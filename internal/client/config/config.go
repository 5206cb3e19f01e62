package config

import (
	"os"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Plugin authorization variants.
const (
	AuthPopup = "popup"
	AuthToken = "token"
	AuthJWT   = "jwt"
)

// Config holds runtime settings shared by the admin and plugin consoles.
type Config struct {
	// APIBase overrides the backend address; when empty it is derived from
	// Env and Origin.
	APIBase string
	Env     string
	Origin  string
	Timeout time.Duration

	// PublicOrigin prefixes generated share links.
	PublicOrigin string

	Storage  StorageConfig
	Identity IdentityConfig

	// AuthMode picks the plugin console's authorization variant.
	AuthMode string

	// LegacyTable receives the single token of pre-map storage during
	// migration.
	LegacyTable string

	CallbackAddr     string
	HandshakeTimeout time.Duration

	LogLevel  string
	LogFormat string

	ExportDir string
	S3        S3Config
}

// StorageConfig selects the key/value store backend.
type StorageConfig struct {
	Driver        string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Namespace     string
	Passphrase    string
}

// IdentityConfig is the workspace user the plugin console acts for.
type IdentityConfig struct {
	OpenID      string `yaml:"open_id" toml:"open_id"`
	TenantKey   string `yaml:"tenant_key" toml:"tenant_key"`
	Fingerprint string `yaml:"fingerprint" toml:"fingerprint"`
}

// S3Config points export archiving at an S3-compatible bucket; an empty
// bucket disables it.
type S3Config struct {
	Bucket    string `yaml:"bucket" toml:"bucket"`
	Region    string `yaml:"region" toml:"region"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	Prefix    string `yaml:"prefix" toml:"prefix"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Env = EnvDevelopment
	c.Timeout = 20 * time.Second
	c.PublicOrigin = "http://localhost:5173"
	c.Storage = StorageConfig{
		Driver:    "sqlite",
		DSN:       "signpanel.db",
		Namespace: "default",
	}
	c.AuthMode = AuthPopup
	c.CallbackAddr = "127.0.0.1:0"
	c.HandshakeTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ExportDir = "exports"
	c.S3 = S3Config{Region: "us-east-1", Prefix: "exports"}
}

// LoadConfig builds a Config from os.Args and the environment.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load applies defaults, the config file, the environment and then the
// flags found in args. Later sources take precedence over earlier ones.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseEnv(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
