// SPDX-License-Identifier: MPL-2.0

package console

import (
	"fmt"
	"io"
	"maps"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/invowk/taskconf/internal/config"
)

type (
	// Settings configures a Console. Zero values write to stderr with no options.
	Settings struct {
		// Out receives diagnostics and log records. nil means os.Stderr.
		Out io.Writer
		// Verbose enables per-file load diagnostics.
		Verbose bool
		// Debug enables the shared-data dump and debug-level log records.
		Debug bool
		// ColorScheme forces the light or dark palette variant.
		ColorScheme config.ColorScheme
		// Options are the --opt values visible to script factories.
		Options map[string]any
		// Exit terminates the process after FailFatal. nil means os.Exit.
		Exit func(code int)
	}

	// Console is a loader host writing to a terminal. It is safe for concurrent use.
	Console struct {
		mu      sync.Mutex
		out     io.Writer
		styles  Styles
		logger  *log.Logger
		verbose bool
		debug   bool
		opts    map[string]any
		scheme  config.ColorScheme
		exit    func(int)
	}
)

// New creates a Console from s.
func New(s Settings) *Console {
	out := s.Out
	if out == nil {
		out = os.Stderr
	}
	exit := s.Exit
	if exit == nil {
		exit = os.Exit
	}

	renderer := lipgloss.NewRenderer(out)
	switch s.ColorScheme {
	case config.ColorSchemeDark:
		renderer.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		renderer.SetHasDarkBackground(false)
	}

	level := log.InfoLevel
	if s.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(out, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})

	return &Console{
		out:     out,
		styles:  NewStyles(renderer),
		logger:  logger,
		verbose: s.Verbose || s.Debug,
		debug:   s.Debug,
		opts:    maps.Clone(s.Options),
		scheme:  s.ColorScheme,
		exit:    exit,
	}
}

// Writeln writes msg on its own line.
func (c *Console) Writeln(msg string) {
	c.println(msg)
}

// Subhead writes msg as a styled section header.
func (c *Console) Subhead(msg string) {
	c.println(c.styles.Subhead.Render(msg))
}

// OK writes a success marker.
func (c *Console) OK() {
	c.println(c.styles.OK.Render("OK"))
}

// Verbose reports whether per-file diagnostics are enabled. Debug implies it.
func (c *Console) Verbose() bool { return c.verbose }

// Debug reports whether debug dumps are enabled.
func (c *Console) Debug() bool { return c.debug }

// Options returns a copy of the --opt values.
func (c *Console) Options() map[string]any {
	return maps.Clone(c.opts)
}

// FailFatal logs err and terminates with exit code 1.
func (c *Console) FailFatal(err error) {
	c.logger.Error("fatal", "error", err)
	c.exit(1)
}

// Logger returns the console's structured logger.
func (c *Console) Logger() *log.Logger {
	return c.logger
}

// ColorScheme returns the forced color scheme, empty or auto for detection.
func (c *Console) ColorScheme() config.ColorScheme {
	return c.scheme
}

// Styles returns the console's palette.
func (c *Console) Styles() Styles {
	return c.styles
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}
