// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE helpers for config files.
//
// Two flows are supported:
//
//   - Schema-backed decoding (ParseAndDecode): compile an embedded schema, unify the
//     user's file with a root definition, validate and decode into T. Used for the
//     tool's own settings file.
//   - Schema-less decoding (DecodeConcrete): validate that an already compiled value
//     is concrete and decode it into a plain map/slice tree. Used for CUE files loaded
//     as build configuration.
//
// Errors are reported as "<file>: <json-path>: <message>".
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	cfg, err := cueutil.ParseAndDecode[map[string]any](schema, data, "#Config",
//	    cueutil.WithFilename("taskconf.cue"),
//	    cueutil.WithConcrete(false),
//	)
package cueutil
