// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/taskconf/internal/testutil"
)

func TestReadData(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"data.yaml":  "target: dist\nbanner: v1\n",
		"data.json":  `{"target": "build"}`,
		"data.toml":  "target = \"out\"\n",
		"empty.yaml": "",
	})

	tests := []struct {
		file string
		want map[string]any
	}{
		{"data.yaml", map[string]any{"target": "dist", "banner": "v1"}},
		{"data.json", map[string]any{"target": "build"}},
		{"data.toml", map[string]any{"target": "out"}},
		{"empty.yaml", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			got, err := New().ReadData(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatalf("ReadData() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReadData() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadDataErrors(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"data.xyz":  "x",
		"list.yaml": "- a\n- b\n",
		"bad.json":  "{",
		"data.star": "def config(host, data):\n    return {}\n",
		"noext":     "a: 1\n",
	})

	tests := []struct {
		file string
		kind error
	}{
		{"data.xyz", ErrUnrecognizedFormat},
		{"noext", ErrUnrecognizedFormat},
		{"missing.yaml", ErrParseFailure},
		{"bad.json", ErrParseFailure},
		{"list.yaml", ErrInvalidContribution},
		{"data.star", ErrInvalidContribution},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			_, err := New().ReadData(filepath.Join(dir, tt.file))
			if !errors.Is(err, tt.kind) {
				t.Fatalf("ReadData() error = %v, want %v", err, tt.kind)
			}
			var fe *FileError
			if !errors.As(err, &fe) || fe.Path != filepath.Join(dir, tt.file) {
				t.Errorf("ReadData() error does not name the file: %v", err)
			}
		})
	}
}

func TestReadDataFactoryCause(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"data.star": "def config(host, data):\n    return {}\n",
	})
	_, err := New().ReadData(filepath.Join(dir, "data.star"))
	if !errors.Is(err, ErrDataFileFactory) {
		t.Errorf("ReadData() error = %v, want ErrDataFileFactory", err)
	}
}
