// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// LegacyMarkerEnv is the environment variable written by EnvMarker.
const LegacyMarkerEnv = "DJANGO_SETTINGS_MODULE"

type (
	// Context is the configuration handed to application factories once a
	// settings module has been configured.
	Context struct {
		// SettingsModule is the name the namespace was located under.
		SettingsModule string
		// Namespace is the configured settings module.
		Namespace Namespace
		// Options are the options merged into Namespace.
		Options ResolvedOptions
	}

	// AppFactory builds an application from a configured settings module.
	AppFactory interface {
		NewApp(ctx *Context) (http.Handler, error)
	}

	// AppFactoryFunc adapts a function to AppFactory.
	AppFactoryFunc func(ctx *Context) (http.Handler, error)

	// Marker records the active settings module outside the process, for
	// loaders that still discover it through the environment.
	Marker interface {
		Mark(settingsModule string) error
	}

	// MarkerFunc adapts a function to Marker.
	MarkerFunc func(settingsModule string) error

	// Option configures a Resolver.
	Option func(*Resolver)

	// Resolver turns deployment options into settings and applies them to
	// settings modules found through its Registry.
	Resolver struct {
		registry *Registry
		logger   *log.Logger
		marker   Marker

		// applyMu serialises Apply; merging and marking are not reentrant.
		applyMu sync.Mutex
		active  *Context
	}
)

// NewApp implements AppFactory.
func (f AppFactoryFunc) NewApp(ctx *Context) (http.Handler, error) {
	return f(ctx)
}

// Mark implements Marker.
func (f MarkerFunc) Mark(settingsModule string) error {
	return f(settingsModule)
}

// EnvMarker returns a Marker setting LegacyMarkerEnv in the process environment.
func EnvMarker() Marker {
	return MarkerFunc(func(settingsModule string) error {
		return os.Setenv(LegacyMarkerEnv, settingsModule)
	})
}

// WithRegistry sets the registry settings modules are looked up in.
func WithRegistry(r *Registry) Option {
	return func(res *Resolver) {
		if r != nil {
			res.registry = r
		}
	}
}

// WithLogger sets the logger used for merge warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(res *Resolver) {
		if l != nil {
			res.logger = l
		}
	}
}

// WithMarker sets a Marker invoked by Apply before merging.
func WithMarker(m Marker) Option {
	return func(res *Resolver) {
		res.marker = m
	}
}

// newDefaultLogger reports merge warnings on stderr.
func newDefaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Prefix: "settings", Level: log.WarnLevel})
}

// NewResolver creates a Resolver. Without WithRegistry it starts with an
// empty registry and without WithLogger it logs warnings to stderr.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		registry: NewRegistry(),
		logger:   newDefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Registry returns the registry used for settings module lookups.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Active returns the context of the last successful Apply, or nil.
func (r *Resolver) Active() *Context {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()
	return r.active
}

// Resolve validates, substitutes and decodes local against global. Neither
// map is modified and the settings module is only read.
func (r *Resolver) Resolve(global GlobalOptions, local LocalOptions) (ResolvedOptions, error) {
	_, _, resolved, err := r.resolve(global, local)
	return resolved, err
}

// Apply resolves the options, marks the settings module as active and
// merges the result into it. Nothing is merged when resolution fails.
func (r *Resolver) Apply(global GlobalOptions, local LocalOptions) (*Context, error) {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	name, ns, resolved, err := r.resolve(global, local)
	if err != nil {
		return nil, err
	}

	if r.marker != nil {
		if err := r.marker.Mark(name); err != nil {
			return nil, fmt.Errorf("mark settings module %s as active: %w", name, err)
		}
	}

	Merge(resolved, ns, r.logger)

	ctx := &Context{SettingsModule: name, Namespace: ns, Options: resolved}
	r.active = ctx
	r.logger.Debug("settings applied", "module", name, "options", len(resolved))
	return ctx, nil
}

// LoadApp applies the options and builds the application with factory.
func (r *Resolver) LoadApp(global GlobalOptions, local LocalOptions, factory AppFactory) (http.Handler, error) {
	if factory == nil {
		return nil, errors.New("no application factory given")
	}

	ctx, err := r.Apply(global, local)
	if err != nil {
		return nil, err
	}

	app, err := factory.NewApp(ctx)
	if err != nil {
		return nil, fmt.Errorf("build application for %s: %w", ctx.SettingsModule, err)
	}
	return app, nil
}

func (r *Resolver) resolve(global GlobalOptions, local LocalOptions) (string, Namespace, ResolvedOptions, error) {
	name := global[SettingsModuleOption]
	if name == "" {
		return "", nil, nil, ErrMissingSettingsModule
	}

	ns, err := r.registry.Locate(name)
	if err != nil {
		return "", nil, nil, err
	}

	if err := validateDebugPlacement(global, local, ns); err != nil {
		return "", nil, nil, err
	}
	if err := validateSupportedNames(local); err != nil {
		return "", nil, nil, err
	}

	working := local.Clone()
	working[DebugSetting] = global[DebugOption]

	for _, option := range working.Names() {
		value, err := ResolveReferences(option, working[option], global)
		if err != nil {
			return "", nil, nil, err
		}
		working[option] = value
	}

	resolved, err := DecodeOptionValues(working)
	if err != nil {
		return "", nil, nil, err
	}
	if _, ok := resolved[DebugSetting].(bool); !ok {
		return "", nil, nil, &BadDebugFlagError{Reason: DebugNotBoolean}
	}

	if file, ok := global[ConfigFileOption]; ok {
		resolved[ConfigFileSetting] = file
	} else {
		resolved[ConfigFileSetting] = nil
	}

	r.logger.Debug("options resolved", "module", name, "options", len(resolved))
	return name, ns, resolved, nil
}
