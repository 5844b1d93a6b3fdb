// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load application"},
			expected: "failed to load application",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load application", Resource: "config:development.ini#main"},
			expected: "failed to load application: config:development.ini#main",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "export settings", Cause: errors.New("unknown export format")},
			expected: "failed to export settings: unknown export format",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "read deployment descriptor",
				Resource:  "/srv/app/production.ini",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to read deployment descriptor: /srv/app/production.ini: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("settings module not found")
	err := &ActionableError{Operation: "resolve settings", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	if (&ActionableError{Operation: "resolve settings"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "load application",
				Resource:    "config:development.ini",
				Suggestions: []string{"Check the [app:main] section", "Run 'pastesettings resolve'"},
			},
			contains: []string{
				"failed to load application: config:development.ini",
				"• Check the [app:main] section",
				"• Run 'pastesettings resolve'",
			},
		},
		{
			name:     "no chain unless verbose",
			err:      &ActionableError{Operation: "decode setting", Cause: errors.New("invalid character")},
			contains: []string{"failed to decode setting: invalid character"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested chain when verbose",
			err: &ActionableError{
				Operation: "run tests",
				Cause: &ActionableError{
					Operation: "create test database",
					Cause:     errors.New("docker not reachable"),
				},
			},
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. failed to create test database: docker not reachable",
				"2. docker not reachable",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("development.ini").Build(); err != nil {
		t.Errorf("Build() without operation = %v, want nil", err)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}

	cause := errors.New("unexpected end of JSON input")
	err := NewErrorContext().
		WithOperation("decode setting").
		WithResource("ALLOWED_HOSTS").
		WithSuggestion("Quote string values").
		WithSuggestions("Escape '$' as '$$'", "Check the brackets").
		Wrap(cause).
		Build()
	if err == nil {
		t.Fatal("Build() returned nil")
	}
	if err.Operation != "decode setting" || err.Resource != "ALLOWED_HOSTS" {
		t.Errorf("Build() = %+v", err)
	}
	if len(err.Suggestions) != 3 || !err.HasSuggestions() {
		t.Errorf("Suggestions = %v, want 3", err.Suggestions)
	}
	if !errors.Is(err, cause) {
		t.Error("Build() should keep the cause")
	}
}

func TestErrorContext_Issue(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("load configuration").
		WithIssue(ConfigLoadFailedId).
		WithSuggestions("", "Run 'pastesettings config init'").
		Build()
	if err.Issue != ConfigLoadFailedId {
		t.Errorf("Issue = %d, want ConfigLoadFailedId", err.Issue)
	}
	if len(err.Suggestions) != 1 {
		t.Errorf("empty suggestions should be skipped, got %q", err.Suggestions)
	}
}

func TestErrorContext_BuildCopies(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("run tests").WithSuggestion("Pass --no-db")
	first := ctx.Build()
	ctx.WithSuggestion("Check that Docker is running").WithResource("./...")

	if len(first.Suggestions) != 1 || first.Resource != "" {
		t.Errorf("later builder calls changed an earlier result: %+v", first)
	}
	if second := ctx.Build(); len(second.Suggestions) != 2 || second.Resource != "./..." {
		t.Errorf("Build() = %+v", second)
	}
}
