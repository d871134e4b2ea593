// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrInvalidFormat is returned when registering a Format without a name, parser
	// or extension.
	ErrInvalidFormat = errors.New("invalid format")
)

type (
	// ParseFunc turns a file's bytes into plain data or a factory. path is used for
	// error messages and by formats that resolve relative references.
	ParseFunc func(path string, src []byte) (Parsed, error)

	// Format binds file extensions to a parser.
	Format struct {
		Name       string
		Extensions []string
		Parse      ParseFunc
	}

	// Registry maps file extensions to formats. Registration is not synchronized:
	// build the registry before handing it to a Loader.
	Registry struct {
		formats []Format
		byExt   map[string]int
	}
)

// NewRegistry creates a registry holding formats. It panics on an invalid format,
// since the built-in set is fixed at compile time.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{byExt: make(map[string]int)}
	for _, f := range formats {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

// DefaultRegistry returns a fresh registry with the built-in formats.
func DefaultRegistry() *Registry {
	return NewRegistry(
		yamlFormat(),
		jsonFormat(),
		tomlFormat(),
		cueFormat(),
		hclFormat(),
		starlarkFormat(),
	)
}

// Register adds f. An extension already bound to another format is rebound to f.
func (r *Registry) Register(f Format) error {
	if f.Name == "" || f.Parse == nil || len(f.Extensions) == 0 {
		return fmt.Errorf("%w: %q needs a name, a parser and at least one extension", ErrInvalidFormat, f.Name)
	}
	exts := make([]string, 0, len(f.Extensions))
	for _, e := range f.Extensions {
		ext := normalizeExt(e)
		if ext == "." {
			return fmt.Errorf("%w: %q has an empty extension", ErrInvalidFormat, f.Name)
		}
		exts = append(exts, ext)
	}
	f.Extensions = exts

	r.formats = append(r.formats, f)
	idx := len(r.formats) - 1
	for _, ext := range exts {
		r.byExt[ext] = idx
	}
	return nil
}

// Lookup returns the format bound to ext. The leading dot is optional and matching
// is case-insensitive.
func (r *Registry) Lookup(ext string) (Format, bool) {
	idx, ok := r.byExt[normalizeExt(ext)]
	if !ok {
		return Format{}, false
	}
	return r.formats[idx], true
}

// Formats returns the registered formats that still own at least one extension, in
// registration order.
func (r *Registry) Formats() []Format {
	live := make(map[int]bool, len(r.byExt))
	for _, idx := range r.byExt {
		live[idx] = true
	}
	out := make([]Format, 0, len(live))
	for i, f := range r.formats {
		if !live[i] {
			continue
		}
		owned := slices.DeleteFunc(slices.Clone(f.Extensions), func(ext string) bool {
			return r.byExt[ext] != i
		})
		f.Extensions = owned
		out = append(out, f)
	}
	return out
}

// Extensions returns every bound extension, sorted.
func (r *Registry) Extensions() []string {
	return slices.Sorted(maps.Keys(r.byExt))
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	return &Registry{
		formats: slices.Clone(r.formats),
		byExt:   maps.Clone(r.byExt),
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
