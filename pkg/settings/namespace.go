// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"maps"
	"sync"
)

type (
	// Namespace is the attribute bag that resolved options are merged into.
	// It is owned by the host application; the resolver only reads and
	// writes attributes.
	Namespace interface {
		// Name identifies the namespace in diagnostics.
		Name() string
		// Lookup returns the attribute value and whether it is defined.
		Lookup(name string) (any, bool)
		// Set defines or replaces an attribute.
		Set(name string, value any)
	}

	// MapNamespace is a Namespace backed by a map. It is safe for concurrent use.
	MapNamespace struct {
		name  string
		mu    sync.RWMutex
		attrs map[string]any
	}
)

// NewMapNamespace creates a namespace called name holding a copy of attrs.
func NewMapNamespace(name string, attrs map[string]any) *MapNamespace {
	ns := &MapNamespace{name: name, attrs: make(map[string]any, len(attrs))}
	maps.Copy(ns.attrs, attrs)
	return ns
}

// Name returns the namespace name.
func (n *MapNamespace) Name() string { return n.name }

// Lookup returns the attribute value and whether it is defined.
func (n *MapNamespace) Lookup(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	value, ok := n.attrs[name]
	return value, ok
}

// Set defines or replaces an attribute.
func (n *MapNamespace) Set(name string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
}

// Delete removes an attribute. It is used to restore a namespace after
// temporary overrides.
func (n *MapNamespace) Delete(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.attrs, name)
}

// Snapshot returns a shallow copy of every attribute.
func (n *MapNamespace) Snapshot() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return maps.Clone(n.attrs)
}
