// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero value", cfg: Config{}},
		{
			name: "load patterns with negation",
			cfg: Config{
				Patterns: []string{"conf/*.yaml", "!conf/local.yaml", "/etc/app/*.toml"},
				Ignore:   []string{"**/tmp/**"},
				BaseDir:  "/home/user/project",
			},
		},
		{name: "clear screen alone", cfg: Config{ClearScreen: true}},
		{name: "empty pattern", cfg: Config{Patterns: []string{""}}, wantErr: true},
		{name: "bare negation", cfg: Config{Patterns: []string{"!"}}, wantErr: true},
		{name: "empty ignore", cfg: Config{Ignore: []string{" "}}, wantErr: true},
		{name: "blank base directory", cfg: Config{BaseDir: "   "}, wantErr: true},
		{name: "unclosed class", cfg: Config{Patterns: []string{"[invalid"}}, wantErr: true},
		{name: "unclosed negated class", cfg: Config{Patterns: []string{"![invalid"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigValidateJoinsEveryProblem(t *testing.T) {
	t.Parallel()

	err := Config{Patterns: []string{"", "[x"}, Ignore: []string{""}}.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("Validate() error is not a joined error: %T", err)
	}
	if got := len(joined.Unwrap()); got != 3 {
		t.Errorf("Validate() joined %d errors, want 3", got)
	}
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	base := filepath.FromSlash("/work")
	abs := func(p string) string { return filepath.FromSlash("/work/" + p) }

	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{"no patterns match everything", nil, abs("anything.txt"), true},
		{"relative glob", []string{"conf/*.yaml"}, abs("conf/app.yaml"), true},
		{"relative glob misses other dir", []string{"conf/*.yaml"}, abs("other/app.yaml"), false},
		{"doublestar", []string{"**/*.cue"}, abs("a/b/c.cue"), true},
		{"negation removes", []string{"conf/*.yaml", "!conf/local.yaml"}, abs("conf/local.yaml"), false},
		{"negation keeps siblings", []string{"conf/*.yaml", "!conf/local.yaml"}, abs("conf/app.yaml"), true},
		{"later include wins over earlier exclude", []string{"!conf/a.yaml", "conf/*.yaml"}, abs("conf/a.yaml"), true},
		{"negation alone selects nothing", []string{"!conf/a.yaml"}, abs("conf/b.yaml"), false},
		{"absolute pattern", []string{filepath.FromSlash("/etc/app/*.toml")}, filepath.FromSlash("/etc/app/db.toml"), true},
		{"literal file", []string{"taskconf.star"}, abs("taskconf.star"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := newMatcher(base, tt.patterns).matches(tt.path); got != tt.want {
				t.Errorf("matches(%q) with %v = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}

func TestWatchRoots(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	other := t.TempDir()

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"no patterns", nil, []string{base}},
		{"relative glob", []string{"*.yaml"}, []string{base}},
		{"missing subdirectory falls back to nearest ancestor", []string{"missing/dir/*.yaml"}, []string{base}},
		{"negations are ignored", []string{"!*.yaml"}, []string{base}},
		{"nested roots collapse", []string{"*.yaml", "missing/*.toml"}, []string{base}},
		{"absolute root outside base", []string{"*.yaml", filepath.Join(other, "*.toml")}, sortedPair(base, other)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, watchRoots(base, tt.patterns)); diff != "" {
				t.Errorf("watchRoots() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultIgnoresIsACopy(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	got[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() returned the shared slice")
	}
}

func sortedPair(a, b string) []string {
	if b < a {
		return []string{b, a}
	}
	return []string{a, b}
}
