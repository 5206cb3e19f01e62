// Package config loads runtime configuration for the signpanel consoles.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML or TOML file selected with -c or -config. ${VAR}
//     references in the file are expanded from the environment.
//  3. A dotenv file (-env-file, or ./.env when present) followed by
//     SIGNPANEL_* environment variables.
//  4. Command-line flags, which override everything else.
//
// # File schema
//
//	api_base: https://api.example.com
//	env: production
//	timeout: 20s
//	public_origin: https://sign.example.com
//	storage:
//	  driver: postgres
//	  dsn: ${SIGNPANEL_DSN}
//	identity:
//	  open_id: ou_123
//	  tenant_key: t_456
//	s3:
//	  bucket: exports
//
// Load errors panic; a console cannot start without its configuration.
package config
