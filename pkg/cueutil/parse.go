// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ErrNotStruct is returned by ExportJSON when the document is not a struct.
var ErrNotStruct = errors.New("document is not a struct")

// ParseResult holds a decoded document together with its unified CUE value.
type ParseResult[T any] struct {
	Value *T

	// Unified is the schema-unified value, for callers that want to inspect
	// defaults or export the document again.
	Unified cue.Value
}

// ParseAndDecode compiles schema and data, unifies data with the definition at
// schemaPath, validates the result and decodes it into T. Errors carry the
// filename and the path of the offending field.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return nil, FormatError(err, options.filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, options.filename)
	}

	return &ParseResult[T]{Value: &result, Unified: unified}, nil
}

// ExportJSON compiles a schema-less CUE document and returns it as JSON. The
// document must be a concrete struct; hidden fields and definitions are not
// exported.
func ExportJSON(data []byte, opts ...Option) ([]byte, error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return nil, err
	}

	value := cuecontext.New().CompileBytes(data, cue.Filename(options.filename))
	if value.Err() != nil {
		return nil, FormatError(value.Err(), options.filename)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, FormatError(err, options.filename)
	}
	if value.IncompleteKind() != cue.StructKind {
		return nil, fmt.Errorf("%s: %w", options.filename, ErrNotStruct)
	}

	out, err := value.MarshalJSON()
	if err != nil {
		return nil, FormatError(err, options.filename)
	}
	return out, nil
}
