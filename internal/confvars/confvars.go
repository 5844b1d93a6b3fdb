// SPDX-License-Identifier: MPL-2.0

// Package confvars exposes the options of a deployment descriptor as plain
// string variables for build and provisioning tools.
//
// Every local option is resolved and decoded the way the settings resolver
// does it, then rendered back to a string: strings verbatim, scalars in their
// Go form, lists and objects as compact JSON.
package confvars

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pastesettings/pastesettings/pkg/settings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"
)

// Supported output formats.
const (
	FormatEnv  Format = "env"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrUnknownFormat is returned by ParseFormat and Write for unsupported formats.
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrInvalidEnvName is returned when an option name is not a valid
	// shell variable name.
	ErrInvalidEnvName = errors.New("invalid environment variable name")
)

type (
	// Format selects how Write renders variables.
	Format string

	// Vars maps option names to their stringified values.
	Vars map[string]string
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatEnv, FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats(), f) {
		return "", fmt.Errorf("%w %q (expected one of env, json, yaml, toml)", ErrUnknownFormat, s)
	}
	return f, nil
}

// Decode resolves "${name}" references in local against global, decodes
// every value as JSON and stringifies the result.
func Decode(global settings.GlobalOptions, local settings.LocalOptions) (Vars, error) {
	substituted := make(map[string]string, len(local))
	for _, name := range local.Names() {
		value, err := settings.ResolveReferences(name, local[name], global)
		if err != nil {
			return nil, err
		}
		substituted[name] = value
	}

	decoded, err := settings.DecodeOptionValues(substituted)
	if err != nil {
		return nil, err
	}

	vars := make(Vars, len(decoded))
	for name, value := range decoded {
		s, err := Stringify(value)
		if err != nil {
			return nil, fmt.Errorf("stringify option %q: %w", name, err)
		}
		vars[name] = s
	}
	return vars, nil
}

// Stringify renders a decoded option value as a string.
func Stringify(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

// Names returns the variable names in sorted order.
func (v Vars) Names() []string {
	return slices.Sorted(maps.Keys(v))
}

// Write renders vars to w in format.
func Write(w io.Writer, vars Vars, format Format) error {
	switch format {
	case FormatEnv:
		return writeEnv(w, vars)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string(vars))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]string(vars)); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(map[string]string(vars))
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// writeEnv writes one NAME=value line per variable, quoted so that bash
// can source the output.
func writeEnv(w io.Writer, vars Vars) error {
	for _, name := range vars.Names() {
		if !syntax.ValidName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidEnvName, name)
		}
		quoted, err := syntax.Quote(vars[name], syntax.LangBash)
		if err != nil {
			return fmt.Errorf("quote %s: %w", name, err)
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, quoted); err != nil {
			return err
		}
	}
	return nil
}
