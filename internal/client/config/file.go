package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/signpanel/internal/flagx"
)

// fileConfig is the on-disk shape. Durations stay strings ("20s") and
// pointers mark values that were actually present.
type fileConfig struct {
	APIBase          *string         `yaml:"api_base" toml:"api_base"`
	Env              *string         `yaml:"env" toml:"env"`
	Origin           *string         `yaml:"origin" toml:"origin"`
	Timeout          *string         `yaml:"timeout" toml:"timeout"`
	PublicOrigin     *string         `yaml:"public_origin" toml:"public_origin"`
	AuthMode         *string         `yaml:"auth_mode" toml:"auth_mode"`
	LegacyTable      *string         `yaml:"legacy_table" toml:"legacy_table"`
	CallbackAddr     *string         `yaml:"callback_addr" toml:"callback_addr"`
	HandshakeTimeout *string         `yaml:"handshake_timeout" toml:"handshake_timeout"`
	LogLevel         *string         `yaml:"log_level" toml:"log_level"`
	LogFormat        *string         `yaml:"log_format" toml:"log_format"`
	ExportDir        *string         `yaml:"export_dir" toml:"export_dir"`
	Storage          *fileStorage    `yaml:"storage" toml:"storage"`
	Identity         *IdentityConfig `yaml:"identity" toml:"identity"`
	S3               *S3Config       `yaml:"s3" toml:"s3"`
}

type fileStorage struct {
	Driver        *string `yaml:"driver" toml:"driver"`
	DSN           *string `yaml:"dsn" toml:"dsn"`
	RedisAddr     *string `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword *string `yaml:"redis_password" toml:"redis_password"`
	RedisDB       *int    `yaml:"redis_db" toml:"redis_db"`
	Namespace     *string `yaml:"namespace" toml:"namespace"`
	Passphrase    *string `yaml:"passphrase" toml:"passphrase"`
}

// parseFile overlays cfg with the file named by -c/-config. It panics on
// read, decode or duration errors.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	fc, err := decodeFile(path, os.ExpandEnv(string(data)))
	if err != nil {
		panic(err)
	}
	if err := fc.apply(cfg); err != nil {
		panic(fmt.Errorf("%s: %w", path, err))
	}
}

func decodeFile(path, content string) (*fileConfig, error) {
	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(content), &fc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(content, &fc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return &fc, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	setString(&cfg.APIBase, fc.APIBase)
	setString(&cfg.Env, fc.Env)
	setString(&cfg.Origin, fc.Origin)
	setString(&cfg.PublicOrigin, fc.PublicOrigin)
	setString(&cfg.AuthMode, fc.AuthMode)
	setString(&cfg.LegacyTable, fc.LegacyTable)
	setString(&cfg.CallbackAddr, fc.CallbackAddr)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.ExportDir, fc.ExportDir)
	if err := setDuration(&cfg.Timeout, fc.Timeout, "timeout"); err != nil {
		return err
	}
	if err := setDuration(&cfg.HandshakeTimeout, fc.HandshakeTimeout, "handshake_timeout"); err != nil {
		return err
	}

	if s := fc.Storage; s != nil {
		setString(&cfg.Storage.Driver, s.Driver)
		setString(&cfg.Storage.DSN, s.DSN)
		setString(&cfg.Storage.RedisAddr, s.RedisAddr)
		setString(&cfg.Storage.RedisPassword, s.RedisPassword)
		setString(&cfg.Storage.Namespace, s.Namespace)
		setString(&cfg.Storage.Passphrase, s.Passphrase)
		if s.RedisDB != nil {
			cfg.Storage.RedisDB = *s.RedisDB
		}
	}
	if fc.Identity != nil {
		cfg.Identity = *fc.Identity
	}
	if s3 := fc.S3; s3 != nil {
		defaults := cfg.S3
		cfg.S3 = *s3
		if cfg.S3.Region == "" {
			cfg.S3.Region = defaults.Region
		}
		if cfg.S3.Prefix == "" {
			cfg.S3.Prefix = defaults.Prefix
		}
	}
	return nil
}
