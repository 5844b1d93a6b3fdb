// SPDX-License-Identifier: MPL-2.0

package pastedeploy

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// Scheme prefixes config URIs.
	Scheme = "config:"
	// DefaultAppName is used when a URI has no "#name" fragment.
	DefaultAppName = "main"
)

// URI addresses one application in a deployment descriptor.
type URI struct {
	// Path is the absolute descriptor path.
	Path string
	// Name is the application name.
	Name string
}

// ParseURI parses "config:<path>[#<name>]". The scheme is optional, and a
// relative path is resolved against base (the working directory when base
// is empty).
func ParseURI(raw, base string) (URI, error) {
	rest := strings.TrimSpace(raw)
	if scheme, after, ok := strings.Cut(rest, ":"); ok && !strings.ContainsAny(scheme, `/\.`) && len(scheme) > 1 {
		if scheme+":" != Scheme {
			return URI{}, fmt.Errorf("%w: unsupported scheme %q in %q", ErrInvalidURI, scheme, raw)
		}
		rest = after
	}

	path, name, _ := strings.Cut(rest, "#")
	if path == "" {
		return URI{}, fmt.Errorf("%w: %q has no path", ErrInvalidURI, raw)
	}
	if name == "" {
		name = DefaultAppName
	}

	if !filepath.IsAbs(path) {
		if base == "" {
			base = "."
		}
		abs, err := filepath.Abs(filepath.Join(base, path))
		if err != nil {
			return URI{}, fmt.Errorf("%w: %q: %w", ErrInvalidURI, raw, err)
		}
		path = abs
	}

	return URI{Path: filepath.Clean(path), Name: name}, nil
}

// String returns the URI in "config:<path>#<name>" form.
func (u URI) String() string {
	return Scheme + u.Path + "#" + u.Name
}
