// SPDX-License-Identifier: MPL-2.0

package pastedeploy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURI is returned for config URIs that cannot be parsed.
	ErrInvalidURI = errors.New("invalid config URI")
	// ErrAppNotFound is the sentinel wrapped by AppNotFoundError.
	ErrAppNotFound = errors.New("application section not found")
	// ErrMissingFactory is returned when an app section has no "use" key.
	ErrMissingFactory = errors.New(`application section has no "use" key`)
	// ErrUndefinedGlobal is returned when "get" copies a global option that
	// does not exist.
	ErrUndefinedGlobal = errors.New("undefined global option")
	// ErrFactoryNotFound is the sentinel wrapped by FactoryNotFoundError.
	ErrFactoryNotFound = errors.New("application factory not found")
)

type (
	// AppNotFoundError is returned when the descriptor has no section for
	// the requested application. It wraps ErrAppNotFound.
	AppNotFoundError struct {
		Path string
		Name string
	}

	// FactoryNotFoundError is returned when "use" names a factory that was
	// never registered. It wraps ErrFactoryNotFound.
	FactoryNotFoundError struct {
		Spec string
	}
)

// Error implements the error interface.
func (e *AppNotFoundError) Error() string {
	return fmt.Sprintf("%s: no [app:%s] section", e.Path, e.Name)
}

// Unwrap returns ErrAppNotFound for errors.Is() compatibility.
func (e *AppNotFoundError) Unwrap() error { return ErrAppNotFound }

// Error implements the error interface.
func (e *FactoryNotFoundError) Error() string {
	return fmt.Sprintf("no application factory registered for %q", e.Spec)
}

// Unwrap returns ErrFactoryNotFound for errors.Is() compatibility.
func (e *FactoryNotFoundError) Unwrap() error { return ErrFactoryNotFound }
