// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when config files selected by load patterns change.
//
// Patterns use the same syntax as the loader: doublestar globs evaluated in order, where a
// pattern prefixed with "!" excludes what it matches. Events within the debounce window are
// coalesced so the callback fires once with the full set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the delay before firing OnChange after the last event.
// Editors often write a temp file and rename it; both events land in one window.
const defaultDebounce = 500 * time.Millisecond

// negationPrefix marks an exclusion pattern.
const negationPrefix = "!"

// ErrInvalidConfig is returned by Config.Validate for unusable watch settings.
var ErrInvalidConfig = errors.New("invalid watch config")

// defaultIgnores lists noisy paths that are never watched.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns select the files that trigger callbacks, in load-pattern syntax.
		// An empty slice matches every non-ignored file under BaseDir.
		Patterns []string

		// Ignore are extra doublestar patterns, relative to BaseDir, merged with the
		// built-in default ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each callback.
		ClearScreen bool

		// BaseDir anchors relative patterns. Empty means the working directory.
		BaseDir string

		// OnChange receives the deduplicated changed paths. Paths under BaseDir are
		// relative to it; others are absolute. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout receives the clear-screen sequence. nil means os.Stdout.
		Stdout io.Writer

		// Logger receives warnings. nil means a stderr logger prefixed "watch".
		Logger *log.Logger
	}

	// Watcher monitors the directories that can hold matching files and fires a
	// debounced callback when they change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		match    *matcher
		ignores  []string
		stdout   io.Writer
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		roots    []string
		started  atomic.Bool
	}

	// matcher applies ordered include/exclude patterns to absolute paths.
	matcher struct {
		rules []rule
	}

	rule struct {
		pattern string
		exclude bool
	}
)

// Validate reports every problem with the config joined into one error.
func (c Config) Validate() error {
	var errs []error
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, fmt.Errorf("%w: base directory is blank", ErrInvalidConfig))
	}
	for _, p := range c.Patterns {
		if err := validatePattern(p, "watch"); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range c.Ignore {
		if err := validatePattern(p, "ignore"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New creates a Watcher and registers every non-ignored directory that can hold a
// matching file.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "watch"})
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		match:    newMatcher(absBase, cfg.Patterns),
		ignores:  ignores,
		stdout:   stdout,
		logger:   logger,
		debounce: debounce,
		baseDir:  absBase,
		roots:    watchRoots(absBase, cfg.Patterns),
	}

	for _, root := range w.roots {
		if err := w.addDirectories(root); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("close after init failure", "error", closeErr)
			}
			return nil, err
		}
	}

	return w, nil
}

// Roots returns the directory trees being watched.
func (w *Watcher) Roots() []string {
	return slices.Clone(w.roots)
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after ctx is cancelled because it is scheduled by time.AfterFunc.
	// A busy callback reschedules instead of running concurrently.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Warn("skipping reload, previous run still in progress")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("reload failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil {
			localTimer.Stop()
		}
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}

			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			abs := filepath.Clean(evt.Name)
			if w.isIgnored(abs) || !w.match.matches(abs) {
				continue
			}

			mu.Lock()
			pending[w.display(abs)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// addDirectories registers root and every non-ignored directory below it.
func (w *Watcher) addDirectories(root string) error {
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", walkDirErr)
			return nil //nolint:nilerr // inaccessible directories are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.isIgnored(path) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if w.isIgnored(path) {
		return
	}
	if err := w.addDirectories(path); err != nil {
		w.logger.Warn("add new directory", "path", path, "error", err)
	}
}

// isIgnored matches abs against the ignore patterns, relative to BaseDir when possible.
func (w *Watcher) isIgnored(abs string) bool {
	rel := filepath.ToSlash(w.display(abs))
	for _, pat := range w.ignores {
		if matchSlash(pat, rel) || matchSlash(pat, rel+"/") {
			return true
		}
	}
	return false
}

// display renders abs relative to BaseDir, or unchanged when it lies outside.
func (w *Watcher) display(abs string) string {
	rel, err := filepath.Rel(w.baseDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return rel
}

func newMatcher(base string, patterns []string) *matcher {
	m := &matcher{}
	for _, raw := range patterns {
		if raw == "" {
			continue
		}
		pat, exclude := strings.CutPrefix(raw, negationPrefix)
		m.rules = append(m.rules, rule{pattern: anchor(base, pat), exclude: exclude})
	}
	return m
}

// matches applies the rules in order; the last rule that matches decides. With no
// rules every path matches. A path that no positive rule selects never matches.
func (m *matcher) matches(abs string) bool {
	if len(m.rules) == 0 {
		return true
	}
	target := filepath.ToSlash(abs)
	selected := false
	for _, r := range m.rules {
		if !matchSlash(r.pattern, target) {
			continue
		}
		selected = !r.exclude
	}
	return selected
}

// watchRoots returns the minimal set of existing directories covering every positive
// pattern. Without patterns the base directory is the only root.
func watchRoots(base string, patterns []string) []string {
	var candidates []string
	for _, raw := range patterns {
		if raw == "" || strings.HasPrefix(raw, negationPrefix) {
			continue
		}
		root, _ := doublestar.SplitPattern(anchor(base, raw))
		candidates = append(candidates, existingAncestor(filepath.FromSlash(root)))
	}
	if len(candidates) == 0 {
		return []string{base}
	}

	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	var roots []string
	for _, c := range candidates {
		covered := slices.ContainsFunc(roots, func(r string) bool {
			return c == r || strings.HasPrefix(c, strings.TrimSuffix(r, string(filepath.Separator))+string(filepath.Separator))
		})
		if !covered {
			roots = append(roots, c)
		}
	}
	return roots
}

// existingAncestor walks up from dir until it finds a directory that exists.
func existingAncestor(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// anchor joins a relative pattern onto base and returns it with forward slashes.
func anchor(base, pattern string) string {
	if filepath.IsAbs(pattern) {
		return filepath.ToSlash(filepath.Clean(pattern))
	}
	return filepath.ToSlash(filepath.Join(base, pattern))
}

func matchSlash(pattern, name string) bool {
	matched, err := doublestar.Match(pattern, name)
	return err == nil && matched
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePattern(raw, label string) error {
	pat := strings.TrimPrefix(raw, negationPrefix)
	if strings.TrimSpace(pat) == "" {
		return fmt.Errorf("%w: empty %s pattern", ErrInvalidConfig, label)
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(pat)) {
		return fmt.Errorf("%w: invalid %s pattern %q", ErrInvalidConfig, label, raw)
	}
	return nil
}
