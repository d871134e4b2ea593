// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"encoding/json"

	"github.com/invowk/taskconf/internal/deepmerge"
)

// scriptView returns the part of data that CUE, HCL and Starlark factories can see:
// mappings, sequences and scalars. Keys holding any other value are left out, and so
// is a sequence with such an element. Go factories always receive data itself.
func scriptView(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if plain, ok := plainValue(v); ok {
			out[k] = plain
		}
	}
	return out
}

func plainValue(v any) (any, bool) {
	switch t := deepmerge.Normalize(v).(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, true
	case map[string]any:
		return scriptView(t), true
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			plain, ok := plainValue(elem)
			if !ok {
				return nil, false
			}
			out[i] = plain
		}
		return out, true
	default:
		return nil, false
	}
}
