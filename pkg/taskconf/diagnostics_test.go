// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/taskconf/internal/testutil"
)

func TestLoadVerboseDiagnostics(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"a.yaml": "jshint:\n  all: [lib/*.js]\n  options: {curly: true}\nname: app\n",
		"b.star": "def config(host, data):\n    return {\"clean\": {\"dist\": [\"dist\"]}}\n",
	})

	host := &testutil.RecordingHost{VerboseFlag: true}
	if _, err := New().Load(host, Options{Src: []string{"*"}, Cwd: dir}, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{
		"## Loading config data from 2 file(s).",
		"Loading " + filepath.Join(dir, "a.yaml") + "...",
		"OK",
		"+ jshint: [all, options] (2 keys)",
		"+ name",
		"Loading " + filepath.Join(dir, "b.star") + "...",
		"is a factory, invoking...",
		"OK",
		"+ clean: [dist] (1 key)",
	}
	if diff := cmp.Diff(want, host.Lines()); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDebugDiagnostics(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"a.star": "def config(host, data):\n    data[\"stamp\"] = \"v1\"\n    return {}\n",
	})

	host := &testutil.RecordingHost{DebugFlag: true}
	if _, err := New().Load(host, Options{Src: []string{"*"}, Cwd: dir}, map[string]any{"env": "ci"}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{
		"## Loading config data from 1 file(s).",
		"  " + filepath.Join(dir, "a.star"),
		"Dumping shared data after loading:",
		"  env: ci",
		"  stamp: v1",
	}
	if diff := cmp.Diff(want, host.Lines()); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadQuietHostWritesNothing(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{"a.yaml": "a: 1\n"})
	host := &testutil.RecordingHost{}
	if _, err := New().Load(host, Options{Src: []string{"*"}, Cwd: dir}, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lines := host.Lines(); len(lines) != 0 {
		t.Errorf("expected no output, got %v", lines)
	}
}

type panickingHost struct {
	testutil.RecordingHost
}

func (*panickingHost) Writeln(string) { panic("sink closed") }
func (*panickingHost) Subhead(string) { panic("sink closed") }
func (*panickingHost) OK()            { panic("sink closed") }

func TestDiagnosticsNeverFailTheLoad(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{"a.yaml": "a: 1\n"})
	host := &panickingHost{testutil.RecordingHost{VerboseFlag: true, DebugFlag: true}}

	got, err := New().Load(host, Options{Src: []string{"*"}, Cwd: dir}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["a"] != 1 {
		t.Errorf("Load = %v", got)
	}
}

func TestSummarizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		value any
		want  string
	}{
		{"name", "app", "+ name"},
		{"empty", map[string]any{}, "+ empty"},
		{"list", []any{1, 2}, "+ list"},
		{"one", map[string]any{"x": 1}, "+ one: [x] (1 key)"},
		{"many", map[string]any{"b": 1, "a": 2, "c": 3}, "+ many: [a, b, c] (3 keys)"},
	}
	for _, tt := range tests {
		if got := summarizeKey(tt.key, tt.value); got != tt.want {
			t.Errorf("summarizeKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestHostValues(t *testing.T) {
	t.Parallel()

	got := HostValues(&testutil.RecordingHost{DebugFlag: true, Opts: map[string]any{"target": "prod"}})
	want := map[string]any{
		"verbose": false,
		"debug":   true,
		"options": map[string]any{"target": "prod"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HostValues mismatch (-want +got):\n%s", diff)
	}

	nilValues := HostValues(nil)
	if nilValues["verbose"] != false || len(nilValues["options"].(map[string]any)) != 0 {
		t.Errorf("HostValues(nil) = %v", nilValues)
	}
}

func TestFileErrorMessages(t *testing.T) {
	t.Parallel()

	unrecognized := &FileError{Path: "/w/a", Kind: ErrUnrecognizedFormat}
	if got := unrecognized.Error(); got != `unrecognized config file format: /w/a: no format registered for extension "(none)"` {
		t.Errorf("Error() = %q", got)
	}

	wrapped := &FileError{Path: "/w/a.json", Ext: ".json", Kind: ErrParseFailure, Cause: ErrNilTarget}
	if got := wrapped.Error(); got != "failed to load config file: /w/a.json: merge target is nil" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, ErrNilTarget) || !errors.Is(wrapped, ErrParseFailure) {
		t.Error("FileError should match both its kind and its cause")
	}
}
