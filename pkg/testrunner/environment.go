// SPDX-License-Identifier: MPL-2.0

package testrunner

import (
	"sync"

	"github.com/pastesettings/pastesettings/pkg/settings"
)

// Settings overridden while tests run.
const (
	TestingSetting      = "TESTING"
	TestDatabaseSetting = "TEST_DATABASE"
)

type (
	// Environment adjusts a configured settings module for a test run and
	// undoes the changes afterwards.
	Environment interface {
		SetUp(ns settings.Namespace) error
		Override(name string, value any)
		TearDown() error
	}

	// NamespaceEnvironment is the default Environment. It sets TESTING and
	// records every attribute it overrides so TearDown can restore it.
	NamespaceEnvironment struct {
		mu    sync.Mutex
		ns    settings.Namespace
		saved map[string]savedAttr
	}

	savedAttr struct {
		value   any
		defined bool
	}

	deleter interface {
		Delete(name string)
	}
)

// NewNamespaceEnvironment creates an idle NamespaceEnvironment.
func NewNamespaceEnvironment() *NamespaceEnvironment {
	return &NamespaceEnvironment{}
}

// SetUp starts recording overrides on ns and sets TESTING to true.
func (e *NamespaceEnvironment) SetUp(ns settings.Namespace) error {
	e.mu.Lock()
	e.ns = ns
	e.saved = make(map[string]savedAttr)
	e.mu.Unlock()

	e.Override(TestingSetting, true)
	return nil
}

// Override sets name on the namespace, remembering its first original value.
func (e *NamespaceEnvironment) Override(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ns == nil {
		return
	}
	if _, seen := e.saved[name]; !seen {
		old, defined := e.ns.Lookup(name)
		e.saved[name] = savedAttr{value: old, defined: defined}
	}
	e.ns.Set(name, value)
}

// TearDown restores every overridden attribute. Attributes that did not
// exist before are deleted when the namespace supports it and set to nil
// otherwise.
func (e *NamespaceEnvironment) TearDown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ns == nil {
		return nil
	}

	for name, attr := range e.saved {
		switch {
		case attr.defined:
			e.ns.Set(name, attr.value)
		default:
			if d, ok := e.ns.(deleter); ok {
				d.Delete(name)
			} else {
				e.ns.Set(name, nil)
			}
		}
	}
	e.ns = nil
	e.saved = nil
	return nil
}
