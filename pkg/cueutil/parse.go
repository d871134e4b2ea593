// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseAndDecode compiles schema, unifies data with the definition (e.g. "#Config"),
// validates the result and decodes it into T. data is bounded by DefaultMaxFileSize.
func ParseAndDecode[T any](schema, data []byte, definition string, opts ...Option) (*T, error) {
	options := parseOptions{concrete: true, filename: "<input>"}
	for _, opt := range opts {
		opt(&options)
	}

	if err := CheckFileSize(data, DefaultMaxFileSize, options.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	root := schemaValue.LookupPath(cue.ParsePath(definition))
	if !root.Exists() {
		return nil, fmt.Errorf("internal error: schema has no definition %s", definition)
	}

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return nil, FormatError(err, options.filename)
	}

	var out T
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, options.filename)
	}
	return &out, nil
}

// DecodeConcrete requires v to be fully concrete and decodes its regular fields
// into a plain Go tree (map[string]any, []any, scalars). Definitions and hidden
// fields are not part of the result.
func DecodeConcrete(v cue.Value, filename string) (any, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, FormatError(err, filename)
	}
	var out any
	if err := v.Decode(&out); err != nil {
		return nil, FormatError(err, filename)
	}
	return out, nil
}
