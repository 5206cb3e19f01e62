package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/config"
	"github.com/dmitrijs2005/signpanel/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// NewLogger builds the console logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	l, err := logging.New(w, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func StoreOptions(cfg *config.Config) metadata.Options {
	return metadata.Options{
		Driver:        cfg.Storage.Driver,
		DSN:           cfg.Storage.DSN,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		Namespace:     cfg.Storage.Namespace,
		Passphrase:    cfg.Storage.Passphrase,
	}
}

// OpenStore opens the configured backend and brings the stored keys up to
// the current schema.
func OpenStore(ctx context.Context, cfg *config.Config, log logging.Logger) (*storage.Store, error) {
	repo, err := metadata.Open(ctx, StoreOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := storage.New(repo, log)
	if err := s.Migrate(ctx, cfg.LegacyTable); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

// ClientOptions derives the REST client settings; creds and refresher are
// supplied by the console's authorization variant.
func ClientOptions(cfg *config.Config, creds client.CredentialSource, refresher client.Refresher, log logging.Logger) client.Options {
	return client.Options{
		BaseURL:     client.ResolveBaseURL(cfg.APIBase, cfg.Env, cfg.Origin),
		Timeout:     cfg.Timeout,
		Credentials: creds,
		Refresher:   refresher,
		Logger:      log,
	}
}

func S3Settings(cfg *config.Config) services.S3Settings {
	return services.S3Settings{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Prefix:    cfg.S3.Prefix,
	}
}
