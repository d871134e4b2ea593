// SPDX-License-Identifier: MPL-2.0

// Package taskconf aggregates build-task configuration split across many files.
//
// A load call runs one synchronous pipeline:
//
//  1. Normalize the caller's input (a pattern, a list of patterns, Options or a
//     map with a "src" key) into a Request.
//  2. Expand the patterns into an ordered, deduplicated list of absolute file paths.
//     Patterns prefixed with "!" exclude paths collected by earlier patterns.
//  3. Parse every file with the Format registered for its extension. A parsed file is
//     either plain data or an invocable Factory; factories are called with the Host
//     and the call's shared data.
//  4. Deep-merge every file's contribution, in resolution order, into one mapping.
//     Later files win on scalar conflicts; mappings merge key by key.
//
// Any failure (unknown extension, malformed content, failing factory) aborts the whole
// call and no partial result is returned.
//
// # Usage
//
//	cfg, err := taskconf.Load(host, []string{"tasks/**/*.yaml", "!tasks/legacy/**"}, map[string]any{
//	    "pkg": pkgInfo,
//	})
//	if err != nil {
//	    return err // *taskconf.FileError names the offending file
//	}
//
// # Formats
//
// YAML (.yaml, .yml), JSON (.json), TOML (.toml), CUE (.cue), HCL (.hcl) and Starlark
// modules (.star) are registered by default. CUE files that declare #host or #data, HCL
// files whose attributes reference host or data, and Starlark modules binding config to
// a function are factories. Additional formats, including Go-native factories, can be
// added with WithFormats.
package taskconf
