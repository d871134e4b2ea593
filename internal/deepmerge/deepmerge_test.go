// SPDX-License-Identifier: MPL-2.0

package deepmerge

import (
	"errors"
	"math/big"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dst  map[string]any
		src  map[string]any
		want map[string]any
	}{
		{
			name: "disjoint keys are unioned",
			dst:  map[string]any{"a": 1},
			src:  map[string]any{"b": 2},
			want: map[string]any{"a": 1, "b": 2},
		},
		{
			name: "later scalar wins",
			dst:  map[string]any{"a": 1},
			src:  map[string]any{"a": 2},
			want: map[string]any{"a": 2},
		},
		{
			name: "nested mappings merge recursively",
			dst:  map[string]any{"jshint": map[string]any{"options": map[string]any{"curly": true}}},
			src:  map[string]any{"jshint": map[string]any{"all": []any{"lib/*.js"}, "options": map[string]any{"eqeqeq": true}}},
			want: map[string]any{"jshint": map[string]any{
				"all":     []any{"lib/*.js"},
				"options": map[string]any{"curly": true, "eqeqeq": true},
			}},
		},
		{
			name: "sequences are replaced, not concatenated",
			dst:  map[string]any{"src": []any{"a.js", "b.js"}},
			src:  map[string]any{"src": []any{"c.js"}},
			want: map[string]any{"src": []any{"c.js"}},
		},
		{
			name: "mapping replaces scalar",
			dst:  map[string]any{"a": "scalar"},
			src:  map[string]any{"a": map[string]any{"x": 1}},
			want: map[string]any{"a": map[string]any{"x": 1}},
		},
		{
			name: "scalar replaces mapping",
			dst:  map[string]any{"a": map[string]any{"x": 1}},
			src:  map[string]any{"a": false},
			want: map[string]any{"a": false},
		},
		{
			name: "empty source is a no-op",
			dst:  map[string]any{"a": 1},
			src:  map[string]any{},
			want: map[string]any{"a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			Merge(tt.dst, tt.src)
			if diff := cmp.Diff(tt.want, tt.dst); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeDoesNotAliasSource(t *testing.T) {
	t.Parallel()

	inner := map[string]any{"x": 1}
	src := map[string]any{"a": inner}
	dst := map[string]any{}

	Merge(dst, src)
	dst["a"].(map[string]any)["x"] = 2

	if inner["x"] != 1 {
		t.Errorf("source mutated through merged result: got %v", inner["x"])
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	cfg := map[string]any{
		"jshint": map[string]any{"options": map[string]any{"jshintrc": ".jshintrc"}},
		"name":   "demo",
	}

	got := Flatten(cfg, ".")
	want := map[string]any{"jshint.options.jshintrc": ".jshintrc", "name": "demo"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	type custom struct{ N int }

	in := map[string]any{
		"yaml":   map[any]any{1: "one", "two": map[any]any{"x": true}},
		"typed":  map[string]string{"k": "v"},
		"list":   []string{"a", "b"},
		"nested": []any{map[any]any{"k": 1}},
		"nil":    nil,
		"struct": custom{N: 3},
	}

	got := Normalize(in)
	want := map[string]any{
		"yaml":   map[string]any{"1": "one", "two": map[string]any{"x": true}},
		"typed":  map[string]any{"k": "v"},
		"list":   []any{"a", "b"},
		"nested": []any{map[string]any{"k": 1}},
		"nil":    nil,
		"struct": custom{N: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeKeepsLeavesByReference(t *testing.T) {
	t.Parallel()

	num := big.NewInt(42)
	boom := errors.New("boom")
	re := regexp.MustCompile("a+")
	src := map[string]any{
		"big":    num,
		"err":    boom,
		"nested": map[string]any{"re": re},
		"list":   []any{num},
	}
	dst := map[string]any{"nested": map[string]any{"keep": true}}

	Merge(dst, src)

	if dst["big"] != num {
		t.Errorf("dst[big] = %v, want the same *big.Int", dst["big"])
	}
	if got := dst["big"].(*big.Int).Int64(); got != 42 {
		t.Errorf("dst[big] = %d, want 42", got)
	}
	if dst["err"] != boom {
		t.Errorf("dst[err] = %v, want the same error value", dst["err"])
	}
	nested := dst["nested"].(map[string]any)
	if nested["re"] != re || nested["keep"] != true {
		t.Errorf("dst[nested] = %v, want keep and the same *regexp.Regexp", nested)
	}
	if got := dst["list"].([]any)[0]; got != num {
		t.Errorf("dst[list][0] = %v, want the same *big.Int", got)
	}
}

func TestNormalizeKeepsPointers(t *testing.T) {
	t.Parallel()

	num := big.NewInt(7)
	boom := errors.New("boom")

	got := Normalize(map[string]any{"big": num, "err": boom, "raw": []byte("x")}).(map[string]any)
	if got["big"] != num {
		t.Errorf("Normalize()[big] = %#v, want the original pointer", got["big"])
	}
	if got["err"] != boom {
		t.Errorf("Normalize()[err] = %#v, want the original error", got["err"])
	}
	if diff := cmp.Diff([]byte("x"), got["raw"]); diff != "" {
		t.Errorf("Normalize()[raw] mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenKeepsLeavesByReference(t *testing.T) {
	t.Parallel()

	num := big.NewInt(9)
	got := Flatten(map[string]any{"a": map[string]any{"b": num}}, ".")
	if got["a.b"] != num {
		t.Errorf("Flatten()[a.b] = %v, want the same *big.Int", got["a.b"])
	}
}
