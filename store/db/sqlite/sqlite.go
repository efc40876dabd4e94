package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/todoassist/internal/profile"
	"github.com/hrygo/todoassist/store"
)

// ============================================================================
// SQLITE SUPPORT (Development)
// ============================================================================
// SQLite is the default driver for dev and demo modes. It keeps everything
// in a single file under the data directory and needs no external service.
// ============================================================================

// WAL keeps readers from blocking the single writer.
const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

// withPragmas appends the connection pragmas, keeping any query the DSN
// already carries.
func withPragmas(dsn string) string {
	switch {
	case strings.HasSuffix(dsn, "?"), strings.HasSuffix(dsn, "&"):
		return dsn + pragmas
	case strings.Contains(dsn, "?"):
		return dsn + "&" + pragmas
	default:
		return dsn + "?" + pragmas
	}
}

// dsnPath returns the file path part of a DSN.
func dsnPath(dsn string) string {
	path, _, _ := strings.Cut(dsn, "?")
	return strings.TrimPrefix(path, "file:")
}

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a db instance.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}
	if err := os.MkdirAll(filepath.Dir(dsnPath(profile.DSN)), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	sqliteDB, err := sql.Open("sqlite", withPragmas(profile.DSN))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}
	sqliteDB.SetMaxOpenConns(1)

	if err := sqliteDB.Ping(); err != nil {
		sqliteDB.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	stmt := `
	CREATE TABLE IF NOT EXISTS user_setting (
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		created_ts BIGINT NOT NULL,
		updated_ts BIGINT NOT NULL,
		UNIQUE(user_id, key)
	);`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to migrate sqlite schema")
	}
	return nil
}
