// SPDX-License-Identifier: MPL-2.0

package pastedeploy

import (
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/pastesettings/pastesettings/pkg/settings"

	"golang.org/x/exp/maps"
)

const (
	// InspectorSpec names the built-in settings inspector application.
	InspectorSpec = "egg:pastesettings#main"

	// ApplicationSetting lets a settings module pick the factory that the
	// built-in entry point delegates to.
	ApplicationSetting = "WSGI_APPLICATION"
)

// Factories maps "use" specs to application factories. It is safe for
// concurrent use.
type Factories struct {
	mu        sync.RWMutex
	factories map[string]settings.AppFactory
}

// NewFactories returns a registry holding the built-in InspectorSpec entry.
//
// The built-in entry serves the settings inspector unless the configured
// settings define ApplicationSetting, in which case the factory registered
// under that spec builds the application instead.
func NewFactories() *Factories {
	f := &Factories{factories: make(map[string]settings.AppFactory)}
	f.Register(InspectorSpec, settings.AppFactoryFunc(f.newDefaultApp))
	return f
}

// Register makes factory available under spec, replacing any previous entry.
func (f *Factories) Register(spec string, factory settings.AppFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factories[NormalizeSpec(spec)] = factory
}

// Lookup returns the factory registered under spec.
func (f *Factories) Lookup(spec string) (settings.AppFactory, error) {
	normalized := NormalizeSpec(spec)

	f.mu.RLock()
	factory, ok := f.factories[normalized]
	f.mu.RUnlock()
	if !ok {
		return nil, &FactoryNotFoundError{Spec: spec}
	}
	return factory, nil
}

// Specs returns the registered specs in sorted order.
func (f *Factories) Specs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Sorted(maps.Keys(f.factories))
}

// NormalizeSpec trims spec and completes "egg:<dist>" with the "#main" entry point.
func NormalizeSpec(spec string) string {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "egg:") && !strings.Contains(spec, "#") {
		return spec + "#" + DefaultAppName
	}
	return spec
}

func (f *Factories) newDefaultApp(ctx *settings.Context) (http.Handler, error) {
	if value, ok := ctx.Namespace.Lookup(ApplicationSetting); ok {
		if spec, isString := value.(string); isString && NormalizeSpec(spec) != InspectorSpec {
			factory, err := f.Lookup(spec)
			if err != nil {
				return nil, err
			}
			return factory.NewApp(ctx)
		}
	}
	return NewInspector(ctx), nil
}
