// SPDX-License-Identifier: MPL-2.0

package pastedeploy

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pastesettings/pastesettings/pkg/settings"

	"github.com/charmbracelet/log"
	"gopkg.in/ini.v1"
)

const (
	useKey    = "use"
	setPrefix = "set "
	getPrefix = "get "

	hereOption = "here"
)

// appSectionPrefixes are the section prefixes that declare an application.
var appSectionPrefixes = []string{"app:", "application:"}

type (
	// AppConfig is the configuration of one application in a descriptor.
	AppConfig struct {
		URI URI
		// Use is the factory spec from the "use" key.
		Use string
		// Global holds the [DEFAULT] options after "set" overrides.
		Global settings.GlobalOptions
		// Local holds the app section's own options after "get" copies.
		Local settings.LocalOptions
	}

	// Loader reads deployment descriptors and builds their applications.
	Loader struct {
		resolver  *settings.Resolver
		factories *Factories
		baseDir   string
		logger    *log.Logger
	}

	// LoaderOption configures a Loader.
	LoaderOption func(*Loader)
)

// WithFactories sets the factory registry. The default is NewFactories().
func WithFactories(f *Factories) LoaderOption {
	return func(l *Loader) {
		if f != nil {
			l.factories = f
		}
	}
}

// WithBaseDir sets the directory relative descriptor paths are resolved against.
func WithBaseDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader that applies settings through resolver.
func NewLoader(resolver *settings.Resolver, opts ...LoaderOption) *Loader {
	l := &Loader{
		resolver:  resolver,
		factories: NewFactories(),
		logger:    log.NewWithOptions(io.Discard, log.Options{Prefix: "pastedeploy"}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Factories returns the loader's factory registry.
func (l *Loader) Factories() *Factories {
	return l.factories
}

// Resolver returns the resolver settings are applied through.
func (l *Loader) Resolver() *settings.Resolver {
	return l.resolver
}

// AppConfig reads the application addressed by rawURI without building it.
func (l *Loader) AppConfig(rawURI string) (*AppConfig, error) {
	uri, err := ParseURI(rawURI, l.baseDir)
	if err != nil {
		return nil, err
	}
	return ReadAppConfig(uri)
}

// LoadApp reads the application addressed by rawURI, applies its settings
// and builds it with the factory named by its "use" key.
func (l *Loader) LoadApp(rawURI string) (http.Handler, error) {
	cfg, err := l.AppConfig(rawURI)
	if err != nil {
		return nil, err
	}

	factory, err := l.factories.Lookup(cfg.Use)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.URI, err)
	}

	l.logger.Debug("loading application", "uri", cfg.URI.String(), "use", cfg.Use)
	return l.resolver.LoadApp(cfg.Global, cfg.Local, factory)
}

// ReadAppConfig parses the descriptor at uri.Path and extracts the options of
// application uri.Name.
func ReadAppConfig(uri URI) (*AppConfig, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		// Values are JSON literals: quotes and '#' must survive.
		PreserveSurroundedQuote:    true,
		IgnoreInlineComment:        true,
		AllowPythonMultilineValues: true,
	}, uri.Path)
	if err != nil {
		return nil, fmt.Errorf("load deployment descriptor %s: %w", uri.Path, err)
	}

	defaults := file.Section(ini.DefaultSection)
	defaults.Key(settings.ConfigFileOption).SetValue(uri.Path)
	defaults.Key(hereOption).SetValue(filepath.Dir(uri.Path))

	section := findAppSection(file, uri.Name)
	if section == nil {
		return nil, &AppNotFoundError{Path: uri.Path, Name: uri.Name}
	}

	cfg := &AppConfig{
		URI:    uri,
		Global: make(settings.GlobalOptions, len(defaults.Keys())),
		Local:  make(settings.LocalOptions, len(section.Keys())),
	}
	for _, key := range defaults.Keys() {
		cfg.Global[key.Name()] = key.String()
	}

	var gets [][2]string
	for _, key := range section.Keys() {
		name := key.Name()
		switch {
		case name == useKey:
			cfg.Use = strings.TrimSpace(key.String())
		case strings.HasPrefix(name, setPrefix):
			cfg.Global[strings.TrimSpace(strings.TrimPrefix(name, setPrefix))] = key.String()
		case strings.HasPrefix(name, getPrefix):
			gets = append(gets, [2]string{strings.TrimSpace(strings.TrimPrefix(name, getPrefix)), strings.TrimSpace(key.String())})
		default:
			cfg.Local[name] = key.String()
		}
	}

	// "get" reads the globals after every "set" of the section applied.
	for _, get := range gets {
		value, ok := cfg.Global[get[1]]
		if !ok {
			return nil, fmt.Errorf("%s: [%s]: get %s: %w: %q", uri.Path, section.Name(), get[0], ErrUndefinedGlobal, get[1])
		}
		cfg.Local[get[0]] = value
	}

	if cfg.Use == "" {
		return nil, fmt.Errorf("%s: [%s]: %w", uri.Path, section.Name(), ErrMissingFactory)
	}
	return cfg, nil
}

func findAppSection(file *ini.File, name string) *ini.Section {
	for _, prefix := range appSectionPrefixes {
		if section, err := file.GetSection(prefix + name); err == nil {
			return section
		}
	}
	return nil
}
