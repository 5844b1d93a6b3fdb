// SPDX-License-Identifier: MPL-2.0

package testrunner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/pastesettings/pastesettings/pkg/pastedeploy"
	"github.com/pastesettings/pastesettings/pkg/settings"
	"github.com/pastesettings/pastesettings/pkg/testdb"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotEnabled is returned by Begin when no config URI was configured.
	ErrNotEnabled = errors.New("test runner plugin is not enabled: no PasteDeploy config URI")
	// ErrDatabaseSetup wraps failures to provision the test database.
	ErrDatabaseSetup = errors.New("create test database")
	// ErrNoActiveSettings is returned when loading the application did not
	// configure a settings module.
	ErrNoActiveSettings = errors.New("no settings module was configured by the application")
)

type (
	// Plugin loads a configured application around a test run.
	Plugin struct {
		loader *pastedeploy.Loader
		logger *log.Logger

		engine      testdb.Engine
		dbOptions   testdb.Options
		provisioner testdb.Provisioner
		env         Environment

		opts       Options
		configured bool
		dbExplicit bool

		app    http.Handler
		active *settings.Context
		db     *testdb.Database
		began  bool
	}

	// Option configures a Plugin.
	Option func(*Plugin)
)

// WithLogger sets the plugin logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDatabase selects the engine and options of the test database. The
// Keep option is taken from the plugin Options.
func WithDatabase(engine testdb.Engine, opts testdb.Options) Option {
	return func(p *Plugin) {
		p.engine = engine
		p.dbOptions = opts
		p.dbExplicit = true
	}
}

// WithProvisioner replaces the database provisioner built from WithDatabase.
func WithProvisioner(prov testdb.Provisioner) Option {
	return func(p *Plugin) {
		p.provisioner = prov
		p.dbExplicit = true
	}
}

// WithEnvironment replaces the default NamespaceEnvironment.
func WithEnvironment(env Environment) Option {
	return func(p *Plugin) {
		if env != nil {
			p.env = env
		}
	}
}

// New creates a Plugin loading applications through loader.
func New(loader *pastedeploy.Loader, opts ...Option) *Plugin {
	p := &Plugin{
		loader: loader,
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "testrunner", Level: log.WarnLevel}),
		engine: testdb.EngineSQLite,
		env:    NewNamespaceEnvironment(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configure stores opts. The plugin is enabled when opts.ConfigURI is set.
func (p *Plugin) Configure(opts Options) {
	p.opts = opts
	p.configured = true
}

// ConfigureFromEnv reads Options through getenv, and the database selection
// too unless WithDatabase or WithProvisioner chose one.
func (p *Plugin) ConfigureFromEnv(getenv func(string) string) error {
	if !p.dbExplicit {
		engine, opts, err := testdb.FromEnv(getenv)
		if err != nil {
			return err
		}
		p.engine, p.dbOptions = engine, opts
	}
	p.Configure(OptionsFromEnv(getenv))
	return nil
}

// Options returns the configured options.
func (p *Plugin) Options() Options {
	return p.opts
}

// Enabled reports whether a config URI was configured.
func (p *Plugin) Enabled() bool {
	return p.opts.ConfigURI != ""
}

// App returns the application loaded by Begin.
func (p *Plugin) App() http.Handler {
	return p.app
}

// Settings returns the settings context configured by Begin.
func (p *Plugin) Settings() *settings.Context {
	return p.active
}

// Database returns the test database, or nil when none was provisioned.
func (p *Plugin) Database() *testdb.Database {
	return p.db
}

// Begin loads the application, sets up the test environment and creates the
// test database unless NoDB is set.
func (p *Plugin) Begin(ctx context.Context) error {
	if !p.Enabled() {
		return ErrNotEnabled
	}

	app, err := p.loader.LoadApp(p.opts.ConfigURI)
	if err != nil {
		return fmt.Errorf("load %s: %w", p.opts.ConfigURI, err)
	}
	active := p.loader.Resolver().Active()
	if active == nil {
		return ErrNoActiveSettings
	}
	p.app = app
	p.active = active
	p.logger.Debug("application loaded", "uri", p.opts.ConfigURI, "module", active.SettingsModule)

	if err := p.env.SetUp(active.Namespace); err != nil {
		return fmt.Errorf("set up test environment: %w", err)
	}
	p.began = true

	if p.opts.NoDB {
		return nil
	}

	prov, err := p.databaseProvisioner()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseSetup, err)
	}
	db, err := prov.Setup(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseSetup, err)
	}
	p.db = db
	p.env.Override(TestDatabaseSetting, db.Setting())
	return nil
}

// Finalize removes the test database and tears the test environment down.
// It is safe to call after a failed Begin.
func (p *Plugin) Finalize(ctx context.Context) error {
	var errs []error

	if p.db != nil {
		prov, err := p.databaseProvisioner()
		if err == nil {
			err = prov.Teardown(ctx, p.db)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("remove test database: %w", err))
		}
		p.db = nil
	}

	if p.began {
		if err := p.env.TearDown(); err != nil {
			errs = append(errs, fmt.Errorf("tear down test environment: %w", err))
		}
		p.began = false
	}

	return errors.Join(errs...)
}

func (p *Plugin) databaseProvisioner() (testdb.Provisioner, error) {
	if p.provisioner != nil {
		return p.provisioner, nil
	}
	opts := p.dbOptions
	opts.Keep = p.opts.KeepDB
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	prov, err := testdb.New(p.engine, opts)
	if err != nil {
		return nil, err
	}
	p.provisioner = prov
	return prov, nil
}

// Main runs m with p wrapped around it and returns the exit code. An
// unconfigured plugin is configured from the environment; a disabled plugin
// just runs the tests.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testrunner.Main(m, testrunner.New(loader)))
//	}
func Main(m *testing.M, p *Plugin) int {
	if !p.configured {
		if err := p.ConfigureFromEnv(os.Getenv); err != nil {
			p.logger.Error("invalid test database environment", "err", err)
			return 1
		}
	}
	if !p.Enabled() {
		return m.Run()
	}

	ctx := context.Background()
	if err := p.Begin(ctx); err != nil {
		p.logger.Error("test run setup failed", "err", err)
		if ferr := p.Finalize(ctx); ferr != nil {
			p.logger.Error("test run cleanup failed", "err", ferr)
		}
		return 1
	}

	code := m.Run()

	if err := p.Finalize(ctx); err != nil {
		p.logger.Error("test run cleanup failed", "err", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}
