// SPDX-License-Identifier: MPL-2.0

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

// SQLite provisions file-backed SQLite databases.
type SQLite struct {
	opts Options
}

// Setup creates the database file. Kept databases live at a stable path and
// are reused when they already exist.
func (s *SQLite) Setup(ctx context.Context) (*Database, error) {
	var (
		dir     string
		cleanup func(context.Context) error
	)
	if s.opts.Keep {
		dir = s.opts.Dir
		if dir == "" {
			cache, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("locate cache dir for kept test database: %w", err)
			}
			dir = filepath.Join(cache, "pastesettings", "testdb")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create test database dir: %w", err)
		}
	} else {
		tmp, err := os.MkdirTemp(s.opts.Dir, "pastesettings-testdb-")
		if err != nil {
			return nil, fmt.Errorf("create test database dir: %w", err)
		}
		dir = tmp
		cleanup = func(context.Context) error { return os.RemoveAll(tmp) }
	}

	path := filepath.Join(dir, s.opts.Name+".sqlite3")
	db := &Database{
		Engine:  EngineSQLite,
		Name:    s.opts.Name,
		Driver:  sqliteDriver,
		DSN:     path + "?_pragma=busy_timeout(5000)",
		Path:    path,
		Kept:    s.opts.Keep,
		cleanup: cleanup,
	}

	version, err := userVersion(ctx, db)
	if err != nil {
		_ = teardown(ctx, db, s.opts.Logger)
		return nil, err
	}

	s.opts.Logger.Info("test database ready", "engine", db.Engine, "path", path, "user_version", version)
	return db, nil
}

// Teardown removes the database directory unless the database is kept.
func (s *SQLite) Teardown(ctx context.Context, db *Database) error {
	return teardown(ctx, db, s.opts.Logger)
}

// userVersion opens the database, which creates the file, and reads its
// schema version.
func userVersion(ctx context.Context, db *Database) (int, error) {
	conn, err := sql.Open(db.Driver, db.DSN)
	if err != nil {
		return 0, fmt.Errorf("open sqlite test database: %w", err)
	}
	defer conn.Close()

	var version int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("initialise sqlite test database: %w", err)
	}
	return version, nil
}
