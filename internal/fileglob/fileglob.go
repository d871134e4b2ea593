// SPDX-License-Identifier: MPL-2.0

// Package fileglob expands ordered lists of doublestar glob patterns into file paths.
//
// Patterns are evaluated left to right. A pattern prefixed with "!" removes every path
// it matches from the paths collected so far; it never adds paths. Within a positive
// pattern, paths are returned in directory-walk order (entries of a directory are
// visited in lexical order), so the result is stable for an unchanged tree.
package fileglob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned when a pattern is not valid doublestar syntax.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// negationPrefix marks an exclusion pattern.
const negationPrefix = "!"

type (
	// InvalidPatternError reports a malformed glob pattern.
	// It wraps ErrInvalidPattern for errors.Is() compatibility.
	InvalidPatternError struct {
		Pattern string
		Cause   error
	}

	// Expander resolves patterns relative to a base directory.
	Expander struct{}
)

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidPattern, e.Pattern, e.Cause)
}

// Unwrap returns ErrInvalidPattern for errors.Is() compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// New returns the filesystem-backed expander.
func New() *Expander {
	return &Expander{}
}

// Expand resolves patterns into absolute, deduplicated file paths. Relative patterns are
// anchored at cwd; an empty cwd means the process working directory. Zero matches is not
// an error.
func (e *Expander) Expand(cwd string, patterns []string) ([]string, error) {
	base, err := resolveBase(cwd)
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]struct{})

	for _, raw := range patterns {
		if raw == "" {
			continue
		}

		if exclude, ok := strings.CutPrefix(raw, negationPrefix); ok {
			matched, err := match(base, exclude)
			if err != nil {
				return nil, err
			}
			if len(matched) == 0 {
				continue
			}
			drop := make(map[string]struct{}, len(matched))
			for _, m := range matched {
				drop[m] = struct{}{}
			}
			kept := files[:0]
			for _, f := range files {
				if _, gone := drop[f]; gone {
					delete(seen, f)
					continue
				}
				kept = append(kept, f)
			}
			files = kept
			continue
		}

		matched, err := match(base, raw)
		if err != nil {
			return nil, err
		}
		for _, m := range matched {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	return files, nil
}

// match returns the absolute paths of regular files matching a single pattern.
func match(base, pattern string) ([]string, error) {
	full := pattern
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, full)
	}
	root, rel := doublestar.SplitPattern(filepath.ToSlash(full))
	root = filepath.FromSlash(root)

	if !doublestar.ValidatePattern(rel) {
		return nil, &InvalidPatternError{Pattern: pattern, Cause: doublestar.ErrBadPattern}
	}

	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Cause: err}
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	return out, nil
}

func resolveBase(cwd string) (string, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("fileglob: determine working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("fileglob: resolve base directory: %w", err)
	}
	return abs, nil
}
