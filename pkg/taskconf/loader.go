// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/taskconf/internal/deepmerge"
	"github.com/invowk/taskconf/internal/fileglob"
	"github.com/invowk/taskconf/pkg/cueutil"
)

// DefaultMaxFileSize bounds every config file read by a Loader.
const DefaultMaxFileSize = cueutil.DefaultMaxFileSize

type (
	// Expander resolves glob patterns into absolute file paths, preserving order.
	Expander interface {
		Expand(cwd string, patterns []string) ([]string, error)
	}

	// Loader runs load calls. It is immutable after New and safe for concurrent use;
	// each call owns its aggregate and its shared-data scratch copy.
	Loader struct {
		registry    *Registry
		expander    Expander
		maxFileSize int64
	}

	// Option configures a Loader.
	Option func(*Loader)
)

var defaultLoader = New()

// New creates a Loader with the built-in formats and the filesystem expander.
func New(opts ...Option) *Loader {
	l := &Loader{
		registry:    DefaultRegistry(),
		expander:    fileglob.New(),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithRegistry replaces the format registry. The loader keeps its own copy.
func WithRegistry(r *Registry) Option {
	return func(l *Loader) {
		if r != nil {
			l.registry = r.Clone()
		}
	}
}

// WithFormats registers additional formats on top of the current registry.
func WithFormats(formats ...Format) Option {
	return func(l *Loader) {
		reg := l.registry.Clone()
		for _, f := range formats {
			if err := reg.Register(f); err != nil {
				panic(err)
			}
		}
		l.registry = reg
	}
}

// WithExpander replaces the glob collaborator.
func WithExpander(e Expander) Option {
	return func(l *Loader) {
		if e != nil {
			l.expander = e
		}
	}
}

// WithMaxFileSize bounds the size of each config file.
func WithMaxFileSize(size int64) Option {
	return func(l *Loader) {
		if size > 0 {
			l.maxFileSize = size
		}
	}
}

// Registry returns a copy of the loader's format registry.
func (l *Loader) Registry() *Registry {
	return l.registry.Clone()
}

// Resolve expands a request's patterns. No patterns, or no matches, yields no files.
func (l *Loader) Resolve(req Request) ([]string, error) {
	if len(req.Patterns) == 0 {
		return nil, nil
	}
	files, err := l.expander.Expand(req.Cwd, req.Patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolutionFailure, err)
	}
	return files, nil
}

// Load resolves input (see Normalize), loads every matched file and returns the
// deep merge of all contributions in resolution order. data is shallow-cloned once;
// every factory of the call receives that same clone, so the caller's map is never
// modified. A nil host is silent. Any failure aborts the call with a *FileError and
// no partial result.
func (l *Loader) Load(host Host, input any, data map[string]any) (map[string]any, error) {
	host = orNop(host)
	req := Normalize(input)
	diag := DiagnosticsFor(host)

	files, err := l.Resolve(req)
	if err != nil {
		return nil, err
	}

	formats, err := l.formatsFor(files)
	if err != nil {
		return nil, err
	}

	scratch := maps.Clone(data)
	if scratch == nil {
		scratch = map[string]any{}
	}

	diag.resolved(files)

	result := make(map[string]any)
	for i, path := range files {
		contribution, err := l.loadFile(host, diag, req, path, formats[i], scratch)
		if err != nil {
			return nil, err
		}
		deepmerge.Merge(result, contribution)
	}

	diag.sharedData(scratch)
	return result, nil
}

// MergeInto loads input and deep-merges the result into target in place, using the
// same rule as Load. target is left untouched when loading fails.
func (l *Loader) MergeInto(host Host, input any, target, data map[string]any) error {
	if target == nil {
		return ErrNilTarget
	}
	loaded, err := l.Load(host, input, data)
	if err != nil {
		return err
	}
	deepmerge.Merge(target, loaded)
	return nil
}

// LoadOrFail is Load reporting failures through host.FailFatal. It returns nil after
// a failure if FailFatal returns.
func (l *Loader) LoadOrFail(host Host, input any, data map[string]any) map[string]any {
	cfg, err := l.Load(host, input, data)
	if err != nil {
		orNop(host).FailFatal(err)
		return nil
	}
	return cfg
}

// MergeIntoOrFail is MergeInto reporting failures through host.FailFatal.
func (l *Loader) MergeIntoOrFail(host Host, input any, target, data map[string]any) {
	if err := l.MergeInto(host, input, target, data); err != nil {
		orNop(host).FailFatal(err)
	}
}

// formatsFor looks up every file's format before anything is loaded, so an
// unrecognized extension fails the call before any factory runs.
func (l *Loader) formatsFor(files []string) ([]Format, error) {
	out := make([]Format, len(files))
	for i, path := range files {
		ext := filepath.Ext(path)
		f, ok := l.registry.Lookup(ext)
		if !ok || ext == "" {
			return nil, &FileError{Path: path, Ext: ext, Kind: ErrUnrecognizedFormat}
		}
		out[i] = f
	}
	return out, nil
}

func (l *Loader) loadFile(host Host, diag Diagnostics, req Request, path string, format Format, scratch map[string]any) (map[string]any, error) {
	diag.loading(path)

	ext := filepath.Ext(path)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrParseFailure, Cause: err}
	}
	if err := cueutil.CheckFileSize(src, l.maxFileSize, filepath.Base(path)); err != nil {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrParseFailure, Cause: err}
	}

	parsed, err := parse(format, path, src)
	if err != nil {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrParseFailure, Cause: err}
	}

	value := parsed.Value()
	if parsed.IsFactory() {
		diag.invoking()
		value, err = invoke(parsed.Factory(), host, scratch)
		if err != nil {
			return nil, &FileError{Path: path, Ext: ext, Kind: ErrFactoryFailure, Cause: err}
		}
	}

	contribution, err := contributionOf(path, value, req.FallbackNaming)
	if err != nil {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrInvalidContribution, Cause: err}
	}

	diag.loaded(contribution)
	return contribution, nil
}

// parse runs a format's parser, turning a panic into an error.
func parse(format Format, path string, src []byte) (parsed Parsed, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s parser panicked: %v", format.Name, r)
		}
	}()
	return format.Parse(path, src)
}

// invoke calls a factory, turning a panic into an error.
func invoke(f Factory, host Host, data map[string]any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f(host, data)
}

// contributionOf normalizes a file's value into a mapping. Empty documents
// contribute nothing.
func contributionOf(path string, value any, fallbackNaming bool) (map[string]any, error) {
	switch v := deepmerge.Normalize(value).(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		if fallbackNaming {
			return map[string]any{stem(path): v}, nil
		}
		return nil, fmt.Errorf("top-level value is %T, want a mapping", value)
	}
}

// stem is the file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load runs Loader.Load on the default loader.
func Load(host Host, input any, data map[string]any) (map[string]any, error) {
	return defaultLoader.Load(host, input, data)
}

// MergeInto runs Loader.MergeInto on the default loader.
func MergeInto(host Host, input any, target, data map[string]any) error {
	return defaultLoader.MergeInto(host, input, target, data)
}

// Flatten returns a dotted-key view of cfg ("jshint.options.jshintrc").
func Flatten(cfg map[string]any) map[string]any {
	return deepmerge.Flatten(cfg, ".")
}
