// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the taskconf CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/taskconf/internal/config"
	"github.com/invowk/taskconf/internal/console"
	"github.com/invowk/taskconf/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootOptions holds the global flags and the settings resolved from them.
type rootOptions struct {
	verbose  bool
	debug    bool
	cfgFile  string
	settings *config.Config
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "taskconf",
		Short: "Load and merge task configuration from many files",
		Long: TitleStyle.Render("taskconf") + SubtitleStyle.Render(" - Load and merge task configuration from many files") + `

taskconf expands glob patterns into config files, loads each one with the
parser its extension selects (YAML, JSON, TOML, CUE, HCL or Starlark) and
deep-merges the results in order. Starlark, CUE and HCL files may compute
their contribution from shared data and from --opt values.

` + SubtitleStyle.Render("Examples:") + `
  taskconf load 'config/*'              Merge every file under config/
  taskconf load 'config/*' '!*.local.*'  Skip local overrides
  taskconf load --flat tasks/*.yaml     Print dotted keys
  taskconf watch 'config/**'            Reprint on every change
  taskconf formats                      List supported extensions`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts.resolveSettings(cmd.Context(), app)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "print per-file load diagnostics")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "print debug diagnostics, including the shared data dump")
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "settings file (default is $XDG_CONFIG_HOME/taskconf/taskconf.cue, then ./taskconf.cue)")

	rootCmd.AddCommand(newLoadCommand(app, opts))
	rootCmd.AddCommand(newWatchCommand(app, opts))
	rootCmd.AddCommand(newFormatsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app, opts))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// resolveSettings loads the settings file. A broken settings file is reported as a
// warning and the defaults are used, so load still works with explicit flags.
func (o *rootOptions) resolveSettings(ctx context.Context, app *App) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := app.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: o.cfgFile,
		Env:            app.Env,
	})
	if err != nil {
		fmt.Fprintln(app.Stderr(), WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, o.verbose))
		cfg = config.DefaultConfig()
	}

	if !o.verbose {
		o.verbose = cfg.UI.Verbose
	}
	if !o.debug {
		o.debug = cfg.UI.Debug
	}
	o.settings = cfg
}

// settingsOrDefault returns the resolved settings, or the defaults before resolution.
func (o *rootOptions) settingsOrDefault() *config.Config {
	if o.settings == nil {
		return config.DefaultConfig()
	}
	return o.settings
}

// newConsole creates the loader host for one command run.
func (o *rootOptions) newConsole(app *App, hostOptions map[string]any) *console.Console {
	return console.New(console.Settings{
		Out:         app.Stderr(),
		Verbose:     o.verbose,
		Debug:       o.debug,
		ColorScheme: o.settingsOrDefault().UI.ColorScheme,
		Options:     hostOptions,
	})
}

// formatErrorForDisplay formats an error for user display. ActionableErrors use their
// own layout; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
