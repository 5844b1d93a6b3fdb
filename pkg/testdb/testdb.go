// SPDX-License-Identifier: MPL-2.0

// Package testdb provisions disposable databases for test runs.
//
// SQLite databases are plain files in a temporary directory. Postgres
// databases run in a container started through testcontainers. Either can be
// kept between runs, in which case the next Setup reuses the same file or
// container instead of creating a new one.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Supported engines.
const (
	EngineSQLite   Engine = "sqlite"
	EnginePostgres Engine = "postgres"
)

// Defaults applied by New when Options leaves a field empty.
const (
	DefaultName           = "test_pastesettings"
	DefaultPostgresImage  = "postgres:16-alpine"
	DefaultPostgresUser   = "postgres"
	DefaultStartupTimeout = 60 * time.Second
)

// ErrUnknownEngine is returned by New for engines it cannot provision.
var ErrUnknownEngine = errors.New("unknown test database engine")

type (
	// Engine names a database engine.
	Engine string

	// Database describes a provisioned database.
	Database struct {
		Engine Engine
		Name   string
		// Driver is the database/sql driver name for DSN.
		Driver string
		DSN    string
		// Path is the database file for file-backed engines.
		Path string
		// Kept reports whether Teardown leaves the database in place.
		Kept bool

		cleanup func(ctx context.Context) error
	}

	// Provisioner creates and removes disposable databases.
	Provisioner interface {
		Setup(ctx context.Context) (*Database, error)
		Teardown(ctx context.Context, db *Database) error
	}

	// Options configures a Provisioner.
	Options struct {
		Name     string
		Image    string
		User     string
		Password string
		// Keep retains the database between runs.
		Keep bool
		// Dir holds kept SQLite databases. Defaults to the user cache dir.
		Dir            string
		StartupTimeout time.Duration
		Logger         *log.Logger
	}
)

// ParseEngine validates s as an Engine.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case EngineSQLite, EnginePostgres:
		return e, nil
	case "":
		return EngineSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

// New returns the Provisioner for engine.
func New(engine Engine, opts Options) (Provisioner, error) {
	opts = opts.withDefaults()
	switch engine {
	case EngineSQLite:
		return &SQLite{opts: opts}, nil
	case EnginePostgres:
		return &Postgres{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Image == "" {
		o.Image = DefaultPostgresImage
	}
	if o.User == "" {
		o.User = DefaultPostgresUser
	}
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = DefaultStartupTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "testdb"})
	}
	return o
}

// Setting returns the description of db exposed to the application under
// test as its TEST_DATABASE setting.
func (db *Database) Setting() map[string]any {
	return map[string]any{
		"ENGINE": string(db.Engine),
		"NAME":   db.Name,
		"DRIVER": db.Driver,
		"DSN":    db.DSN,
	}
}

// Ping opens db and checks that it accepts connections.
func Ping(ctx context.Context, db *Database) error {
	conn, err := sql.Open(db.Driver, db.DSN)
	if err != nil {
		return fmt.Errorf("open %s test database: %w", db.Engine, err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s test database: %w", db.Engine, err)
	}
	return nil
}

func teardown(ctx context.Context, db *Database, logger *log.Logger) error {
	if db == nil {
		return nil
	}
	if db.Kept {
		logger.Info("keeping test database", "engine", db.Engine, "name", db.Name)
		return nil
	}
	if db.cleanup == nil {
		return nil
	}
	if err := db.cleanup(ctx); err != nil {
		return fmt.Errorf("remove %s test database %s: %w", db.Engine, db.Name, err)
	}
	logger.Debug("test database removed", "engine", db.Engine, "name", db.Name)
	return nil
}
