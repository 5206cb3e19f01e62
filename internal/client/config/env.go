package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/signpanel/internal/flagx"
)

// EnvPrefix namespaces the environment variables read by parseEnv.
const EnvPrefix = "SIGNPANEL_"

// defaultEnvFile is loaded when present and -env-file is not given.
const defaultEnvFile = ".env"

type envSetter func(cfg *Config, v string) error

func stringVar(get func(*Config) *string) envSetter {
	return func(cfg *Config, v string) error {
		*get(cfg) = v
		return nil
	}
}

func durationVar(get func(*Config) *time.Duration) envSetter {
	return func(cfg *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*get(cfg) = d
		return nil
	}
}

var envVars = map[string]envSetter{
	"API_BASE":          stringVar(func(c *Config) *string { return &c.APIBase }),
	"ENV":               stringVar(func(c *Config) *string { return &c.Env }),
	"ORIGIN":            stringVar(func(c *Config) *string { return &c.Origin }),
	"TIMEOUT":           durationVar(func(c *Config) *time.Duration { return &c.Timeout }),
	"PUBLIC_ORIGIN":     stringVar(func(c *Config) *string { return &c.PublicOrigin }),
	"STORAGE_DRIVER":    stringVar(func(c *Config) *string { return &c.Storage.Driver }),
	"DSN":               stringVar(func(c *Config) *string { return &c.Storage.DSN }),
	"REDIS_ADDR":        stringVar(func(c *Config) *string { return &c.Storage.RedisAddr }),
	"REDIS_PASSWORD":    stringVar(func(c *Config) *string { return &c.Storage.RedisPassword }),
	"NAMESPACE":         stringVar(func(c *Config) *string { return &c.Storage.Namespace }),
	"PASSPHRASE":        stringVar(func(c *Config) *string { return &c.Storage.Passphrase }),
	"OPEN_ID":           stringVar(func(c *Config) *string { return &c.Identity.OpenID }),
	"TENANT_KEY":        stringVar(func(c *Config) *string { return &c.Identity.TenantKey }),
	"FINGERPRINT":       stringVar(func(c *Config) *string { return &c.Identity.Fingerprint }),
	"AUTH_MODE":         stringVar(func(c *Config) *string { return &c.AuthMode }),
	"LEGACY_TABLE":      stringVar(func(c *Config) *string { return &c.LegacyTable }),
	"CALLBACK_ADDR":     stringVar(func(c *Config) *string { return &c.CallbackAddr }),
	"HANDSHAKE_TIMEOUT": durationVar(func(c *Config) *time.Duration { return &c.HandshakeTimeout }),
	"LOG_LEVEL":         stringVar(func(c *Config) *string { return &c.LogLevel }),
	"LOG_FORMAT":        stringVar(func(c *Config) *string { return &c.LogFormat }),
	"EXPORT_DIR":        stringVar(func(c *Config) *string { return &c.ExportDir }),
	"S3_BUCKET":         stringVar(func(c *Config) *string { return &c.S3.Bucket }),
	"S3_REGION":         stringVar(func(c *Config) *string { return &c.S3.Region }),
	"S3_ENDPOINT":       stringVar(func(c *Config) *string { return &c.S3.Endpoint }),
	"S3_ACCESS_KEY":     stringVar(func(c *Config) *string { return &c.S3.AccessKey }),
	"S3_SECRET_KEY":     stringVar(func(c *Config) *string { return &c.S3.SecretKey }),
	"S3_PREFIX":         stringVar(func(c *Config) *string { return &c.S3.Prefix }),
	"REDIS_DB": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Storage.RedisDB = n
		return nil
	},
}

// loadEnvFile loads the dotenv file into the process environment without
// overriding variables that are already set. A missing default file is
// not an error; a missing explicit one is.
func loadEnvFile(args []string) error {
	path := flagx.EnvFile(args)
	if path == "" {
		path = defaultEnvFile
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	return godotenv.Load(path)
}

// parseEnv overlays cfg with SIGNPANEL_* variables. It panics on malformed
// values.
func parseEnv(cfg *Config, args []string) {
	if err := loadEnvFile(args); err != nil {
		panic(err)
	}
	for name, set := range envVars {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(cfg, v); err != nil {
			panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
	}
}
