// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/invowk/taskconf/internal/config"
	"github.com/invowk/taskconf/pkg/taskconf"
)

type (
	// App wires the CLI's collaborators. Every command handler receives the App and
	// writes only to its streams, so tests can run commands against buffers.
	App struct {
		Config ConfigProvider
		Loader *taskconf.Loader
		Env    func(string) string
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies are the injection points of NewApp. Nil fields get production
	// defaults.
	Dependencies struct {
		Config ConfigProvider
		Loader *taskconf.Loader
		Env    func(string) string
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads tool settings using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Loader: deps.Loader,
		Env:    deps.Env,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Loader == nil {
		app.Loader = taskconf.New()
	}
	if app.Env == nil {
		app.Env = os.Getenv
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// Stdout returns the stream command results are written to.
func (a *App) Stdout() io.Writer { return a.stdout }

// Stderr returns the stream diagnostics are written to.
func (a *App) Stderr() io.Writer { return a.stderr }
