// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error. It names the failed operation
	// and the descriptor, URI or file involved, lists what the user can try
	// and may point at a catalog entry with the full explanation.
	ActionableError struct {
		// Operation is a verb phrase such as "resolve settings".
		Operation string
		// Resource is the config URI, descriptor or file involved, if any.
		Resource string
		// Suggestions are printed below the message, one per line.
		Suggestions []string
		// Issue is the catalog entry rendered after the error. Zero means
		// the CLI picks one from Cause.
		Issue Id
		Cause error
	}

	// ErrorContext builds an ActionableError step by step:
	//
	//	return issue.NewErrorContext().
	//		WithOperation("load configuration").
	//		WithResource(path).
	//		WithIssue(issue.ConfigLoadFailedId).
	//		WithSuggestion("Run 'pastesettings config init'").
	//		Wrap(err).
	//		BuildError()
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the message followed by the suggestions. In verbose mode
// every error of the cause chain is listed as well.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.HasSuggestions() {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err)
		}
	}
	return b.String()
}

// HasSuggestions reports whether there is anything to try.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// WithOperation sets the operation. It is required.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithIssue links the catalog entry that explains the error.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	return c.WithSuggestions(s)
}

// WithSuggestions appends suggestions; empty strings are skipped.
func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	for _, s := range sugs {
		if s != "" {
			c.err.Suggestions = append(c.err.Suggestions, s)
		}
	}
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns a copy of the error built so far, or nil without an operation.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// BuildError is Build returning an error interface, so that a missing
// operation yields a nil error rather than a typed nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
