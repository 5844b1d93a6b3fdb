// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"errors"
	"sync"
)

type (
	// Locator finds settings modules that were not registered up front, for
	// example by reading them from disk. Implementations return an error
	// wrapping ErrSettingsModuleNotFound when name does not exist; any other
	// error is propagated to the caller unchanged.
	Locator interface {
		Locate(name string) (Namespace, error)
	}

	// LocatorFunc adapts a function to Locator.
	LocatorFunc func(name string) (Namespace, error)

	// Registry maps settings module names to namespaces. Registered
	// namespaces take precedence over locators, which are consulted in the
	// order they were added.
	Registry struct {
		mu         sync.RWMutex
		namespaces map[string]Namespace
		locators   []Locator
	}
)

// Locate implements Locator.
func (f LocatorFunc) Locate(name string) (Namespace, error) {
	return f(name)
}

// NewRegistry creates an empty registry consulting the given locators.
func NewRegistry(locators ...Locator) *Registry {
	return &Registry{
		namespaces: make(map[string]Namespace),
		locators:   locators,
	}
}

// Register makes ns available under its own name.
func (r *Registry) Register(ns Namespace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[ns.Name()] = ns
}

// AddLocator appends a locator consulted for unregistered names.
func (r *Registry) AddLocator(l Locator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locators = append(r.locators, l)
}

// Locate returns the namespace registered under name, asking the locators
// when nothing was registered. It returns a *SettingsModuleNotFoundError when
// no source knows the name.
func (r *Registry) Locate(name string) (Namespace, error) {
	r.mu.RLock()
	ns, ok := r.namespaces[name]
	locators := r.locators
	r.mu.RUnlock()
	if ok {
		return ns, nil
	}

	for _, l := range locators {
		ns, err := l.Locate(name)
		if err == nil {
			return ns, nil
		}
		if !errors.Is(err, ErrSettingsModuleNotFound) {
			return nil, err
		}
	}

	return nil, &SettingsModuleNotFoundError{Name: name}
}
