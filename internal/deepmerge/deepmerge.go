// SPDX-License-Identifier: MPL-2.0

// Package deepmerge combines configuration trees.
//
// Trees are plain Go values built from map[string]any, []any and leaves. Merging is
// ordered and favors the later tree: when both sides hold a mapping under the same key
// the mappings are merged recursively, otherwise the later value replaces the earlier
// one. Sequences are treated as leaves and are never concatenated. Leaves of any type
// (pointers, errors, structs) are carried by reference and never copied.
package deepmerge

import (
	"fmt"
	"reflect"

	"github.com/knadh/koanf/maps"
)

// Merge deep-merges src into dst in place. The containers of src are copied first so
// that later mutations of dst never reach back into src.
func Merge(dst, src map[string]any) {
	if dst == nil || len(src) == 0 {
		return
	}
	maps.Merge(copyTree(src), dst)
}

// Flatten returns a single-level view of cfg with nested keys joined by delim
// (e.g. "jshint.options.jshintrc").
func Flatten(cfg map[string]any, delim string) map[string]any {
	if len(cfg) == 0 {
		return map[string]any{}
	}
	// The second result maps each flat key to its path segments.
	flat, _ := maps.Flatten(copyTree(cfg), nil, delim)
	return flat
}

// copyTree duplicates the map[string]any and []any containers of m. Everything
// else is shared with m.
func copyTree(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyTree(t)
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = copyValue(elem)
		}
		return out
	default:
		return v
	}
}

// Normalize converts the containers of v into map[string]any and []any.
// Decoders disagree on container types (YAML yields map[any]any for non-string keys,
// Go factories may return typed maps and slices); the merge rule only recognizes
// map[string]any as a mapping. Pointers, structs and other leaves are returned as-is.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []byte:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}
