// SPDX-License-Identifier: MPL-2.0

package pastedeploy

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pastesettings/pastesettings/pkg/settings"
)

// maskedValue replaces the value of sensitive settings in inspector output.
const maskedValue = "********"

// sensitiveMarkers flag setting names whose values are masked.
var sensitiveMarkers = []string{"SECRET", "PASSWORD", "TOKEN"}

type (
	// snapshotter is implemented by namespaces that can list their attributes.
	snapshotter interface {
		Snapshot() map[string]any
	}

	// Inspector is the built-in application. It serves the configured
	// settings module as JSON.
	//
	//	GET /                  module name and every setting
	//	GET /settings/{name}   one setting, 404 when undefined
	//	GET /healthz           "ok"
	Inspector struct {
		ctx *settings.Context
		mux *http.ServeMux
	}

	inspectorDocument struct {
		SettingsModule string         `json:"settings_module"`
		Settings       map[string]any `json:"settings"`
	}
)

// NewInspector creates an Inspector for ctx.
func NewInspector(ctx *settings.Context) *Inspector {
	i := &Inspector{ctx: ctx, mux: http.NewServeMux()}
	i.mux.HandleFunc("GET /{$}", i.handleIndex)
	i.mux.HandleFunc("GET /settings/{name}", i.handleSetting)
	i.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return i
}

// ServeHTTP implements http.Handler.
func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i.mux.ServeHTTP(w, r)
}

func (i *Inspector) handleIndex(w http.ResponseWriter, _ *http.Request) {
	attrs := map[string]any(i.ctx.Options)
	if s, ok := i.ctx.Namespace.(snapshotter); ok {
		attrs = s.Snapshot()
	}

	masked := make(map[string]any, len(attrs))
	for name, value := range attrs {
		masked[name] = maskSensitive(name, value)
	}

	writeJSON(w, http.StatusOK, inspectorDocument{
		SettingsModule: i.ctx.SettingsModule,
		Settings:       masked,
	})
}

func (i *Inspector) handleSetting(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value, ok := i.ctx.Namespace.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "setting " + name + " is not defined"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{name: maskSensitive(name, value)})
}

// maskSensitive masks value when name looks sensitive. Maps and sequences
// are walked so nested keys are masked too, and passwords embedded in URL
// strings are redacted.
func maskSensitive(name string, value any) any {
	if isSensitive(name) {
		return maskedValue
	}

	switch v := value.(type) {
	case map[string]any:
		masked := make(map[string]any, len(v))
		for key, item := range v {
			masked[key] = maskSensitive(key, item)
		}
		return masked
	case []any:
		masked := make([]any, len(v))
		for i, item := range v {
			masked[i] = maskSensitive("", item)
		}
		return masked
	case string:
		return redactURL(v)
	default:
		return value
	}
}

func isSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// redactURL hides the password of URL-shaped values such as DSNs.
func redactURL(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return s
	}
	return u.Redacted()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
