// SPDX-License-Identifier: MPL-2.0

package settingsmodule

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pastesettings/pastesettings/pkg/cueutil"
	"github.com/pastesettings/pastesettings/pkg/settings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/jsonc"
)

// Extensions lists the supported file extensions in lookup order.
var Extensions = []string{".cue", ".json", ".jsonc"}

// ErrNotObject is returned when a settings file does not hold an object.
var ErrNotObject = errors.New("settings module must be an object")

type (
	// Locator resolves dotted module names below a root directory. Loaded
	// modules are cached, so every lookup of a name returns the same
	// namespace and merged settings persist between lookups.
	Locator struct {
		root   string
		logger *log.Logger

		mu    sync.Mutex
		cache map[string]*settings.MapNamespace
	}

	// Option configures a Locator.
	Option func(*Locator)
)

// WithLogger sets the logger used to report loaded modules.
func WithLogger(l *log.Logger) Option {
	return func(loc *Locator) {
		if l != nil {
			loc.logger = l
		}
	}
}

// New creates a Locator reading modules below root.
func New(root string, opts ...Option) *Locator {
	l := &Locator{
		root:   root,
		logger: log.NewWithOptions(io.Discard, log.Options{Prefix: "settingsmodule"}),
		cache:  make(map[string]*settings.MapNamespace),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the directory modules are read from.
func (l *Locator) Root() string {
	return l.root
}

// Locate implements settings.Locator. Names that are not valid dotted
// identifiers or have no file are reported as not found; read and parse
// failures are returned as they are.
func (l *Locator) Locate(name string) (settings.Namespace, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ns, ok := l.cache[name]; ok {
		return ns, nil
	}

	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}

	attrs, err := Load(path)
	if err != nil {
		return nil, err
	}

	ns := settings.NewMapNamespace(name, attrs)
	l.cache[name] = ns
	l.logger.Debug("settings module loaded", "module", name, "path", path, "attributes", len(attrs))
	return ns, nil
}

// Forget drops name from the cache so the next lookup reads the file again.
func (l *Locator) Forget(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, name)
}

// Path returns the file backing name. It returns a
// *settings.SettingsModuleNotFoundError when no such file exists.
func (l *Locator) Path(name string) (string, error) {
	parts, ok := splitName(name)
	if !ok {
		return "", &settings.SettingsModuleNotFoundError{Name: name}
	}

	base := filepath.Join(append([]string{l.root}, parts...)...)
	for _, ext := range Extensions {
		candidate := base + ext
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			return candidate, nil
		case err == nil, errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return "", fmt.Errorf("stat settings module %s: %w", candidate, err)
		}
	}
	return "", &settings.SettingsModuleNotFoundError{Name: name}
}

// Load reads a settings file and returns its top-level attributes. Numbers
// decode to int64 or float64 like deployment option values do.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings module: %w", err)
	}

	switch filepath.Ext(path) {
	case ".cue":
		data, err = cueutil.ExportJSON(data, cueutil.WithFilename(path))
		if err != nil {
			return nil, err
		}
	case ".jsonc":
		data = jsonc.ToJSON(data)
	}

	value, err := settings.DecodeValue(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	attrs, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotObject)
	}
	return attrs, nil
}

func splitName(name string) ([]string, bool) {
	if name == "" {
		return nil, false
	}
	parts := strings.Split(name, ".")
	for _, part := range parts {
		if !isIdentifier(part) {
			return nil, false
		}
	}
	return parts, true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
