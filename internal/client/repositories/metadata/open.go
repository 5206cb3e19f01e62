package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/signpanel/internal/client/migrations"
	"github.com/dmitrijs2005/signpanel/internal/dbx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string // sqlite (default) | postgres | redis
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Namespace     string
	Passphrase    string // non-empty enables SealedRepository
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// RunMigrations applies the embedded migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	var dir, gooseDialect string
	switch dialect {
	case dbx.DialectPostgres:
		goose.SetBaseFS(migrations.Postgres)
		dir, gooseDialect = "postgres", "postgres"
	default:
		goose.SetBaseFS(migrations.SQLite)
		dir, gooseDialect = "sqlite", "sqlite3"
	}
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s store: %w", dialect, err)
	}
	return nil
}

// Open builds the configured repository, running migrations for SQL backends.
func Open(ctx context.Context, opts Options) (Repository, error) {
	var repo Repository

	switch strings.ToLower(opts.Driver) {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", opts.RedisAddr, err)
		}
		repo = NewRedisRepository(rdb, opts.Namespace)

	default:
		dialect, err := dbx.ParseDialect(opts.Driver)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open(dialect.DriverName(), opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", dialect, err)
		}
		if dialect == dbx.DialectSQLite {
			db.SetMaxOpenConns(1)
		}
		if err := RunMigrations(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, err
		}
		repo = NewSQLRepository(db, dialect)
	}

	if opts.Passphrase == "" {
		return repo, nil
	}

	sealed, err := NewSealedRepository(ctx, repo, opts.Passphrase)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return sealed, nil
}
