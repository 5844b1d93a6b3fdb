// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"errors"
	"testing"
)

func TestRegistry_RegisteredNamespaceWins(t *testing.T) {
	t.Parallel()

	registered := NewMapNamespace("app.settings", nil)
	located := NewMapNamespace("app.settings", map[string]any{"FROM": "locator"})

	calls := 0
	registry := NewRegistry(LocatorFunc(func(string) (Namespace, error) {
		calls++
		return located, nil
	}))
	registry.Register(registered)

	ns, err := registry.Locate("app.settings")
	if err != nil {
		t.Fatalf("Locate() returned error: %v", err)
	}
	if ns != Namespace(registered) {
		t.Errorf("Locate() returned %#v, want the registered namespace", ns)
	}
	if calls != 0 {
		t.Errorf("locator called %d times, want 0", calls)
	}
}

func TestRegistry_LocatorsInOrder(t *testing.T) {
	t.Parallel()

	second := NewMapNamespace("b", nil)
	var order []string

	registry := NewRegistry(
		LocatorFunc(func(name string) (Namespace, error) {
			order = append(order, "first")
			return nil, &SettingsModuleNotFoundError{Name: name}
		}),
	)
	registry.AddLocator(LocatorFunc(func(string) (Namespace, error) {
		order = append(order, "second")
		return second, nil
	}))

	ns, err := registry.Locate("b")
	if err != nil {
		t.Fatalf("Locate() returned error: %v", err)
	}
	if ns != Namespace(second) {
		t.Errorf("Locate() returned %#v, want the second locator's namespace", ns)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("locators consulted as %v", order)
	}
}

func TestRegistry_NotFound(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(LocatorFunc(func(name string) (Namespace, error) {
		return nil, &SettingsModuleNotFoundError{Name: name}
	}))

	_, err := registry.Locate("missing.module")
	var nfErr *SettingsModuleNotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected *SettingsModuleNotFoundError, got: %v", err)
	}
	if nfErr.Name != "missing.module" {
		t.Errorf("Name = %q, want %q", nfErr.Name, "missing.module")
	}
	if !errors.Is(err, ErrSetting) {
		t.Errorf("error should wrap ErrSetting, got: %v", err)
	}
}

func TestRegistry_LocatorErrorPropagates(t *testing.T) {
	t.Parallel()

	broken := errors.New("syntax error in settings module")
	called := false
	registry := NewRegistry(
		LocatorFunc(func(string) (Namespace, error) { return nil, broken }),
		LocatorFunc(func(string) (Namespace, error) {
			called = true
			return NewMapNamespace("x", nil), nil
		}),
	)

	_, err := registry.Locate("x")
	if !errors.Is(err, broken) {
		t.Fatalf("expected locator error unchanged, got: %v", err)
	}
	if errors.Is(err, ErrSettingsModuleNotFound) {
		t.Errorf("locator error must not be reported as not found: %v", err)
	}
	if called {
		t.Error("later locators must not be consulted after a failure")
	}
}

func TestResolver_LocatorErrorPropagates(t *testing.T) {
	t.Parallel()

	broken := errors.New("cannot parse settings module")
	registry := NewRegistry(LocatorFunc(func(string) (Namespace, error) { return nil, broken }))
	r := NewResolver(WithRegistry(registry))

	_, err := r.Resolve(GlobalOptions{DebugOption: "true", SettingsModuleOption: "bad"}, nil)
	if !errors.Is(err, broken) {
		t.Errorf("expected locator error, got: %v", err)
	}
}
