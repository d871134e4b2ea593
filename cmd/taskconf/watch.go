// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/taskconf/internal/config"
	"github.com/invowk/taskconf/internal/console"
	"github.com/invowk/taskconf/internal/watch"
)

func newWatchCommand(app *App, root *rootOptions) *cobra.Command {
	flags := &loadFlags{}
	var clearScreen bool

	watchCmd := &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Reprint the merged config whenever a matched file changes",
		Long: `Load the patterns like 'taskconf load', then watch the matched files and the
shared data file. Every change, creation or removal reloads and reprints the
merged config. Load errors are reported and the watch continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := root.settingsOrDefault()
			req, err := flags.resolve(settings, args, cmd.Flags())
			if err != nil {
				return err
			}
			host := root.newConsole(app, req.HostOpts)
			return runWatch(cmd.Context(), app, host, req, settings.Watch, clearScreen)
		},
	}

	flags.register(watchCmd.Flags())
	watchCmd.Flags().BoolVar(&clearScreen, "clear", false, "clear the terminal before each reprint")
	return watchCmd
}

// runWatch prints the config once and again after every debounced change, until ctx
// is cancelled.
func runWatch(ctx context.Context, app *App, host *console.Console, req loadRequest, settings config.WatchConfig, clearScreen bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reload := func() {
		if err := runLoad(app, host, req, app.Stdout()); err != nil {
			fmt.Fprintln(app.Stderr(), formatErrorForDisplay(err, host.Verbose()))
		}
	}

	patterns := req.Options.Src
	if req.DataFile != "" {
		abs, err := filepath.Abs(req.DataFile)
		if err != nil {
			return fmt.Errorf("resolve data file: %w", err)
		}
		patterns = append(patterns[:len(patterns):len(patterns)], abs)
	}

	w, err := watch.New(watch.Config{
		Patterns:    patterns,
		Ignore:      settings.Ignore,
		Debounce:    settings.Debounce,
		ClearScreen: clearScreen,
		BaseDir:     req.Options.Cwd,
		Stdout:      app.Stdout(),
		Logger:      host.Logger(),
		OnChange: func(_ context.Context, changed []string) error {
			host.Logger().Info("reloading", "changed", changed)
			reload()
			return nil
		},
	})
	if err != nil {
		return err
	}

	reload()
	host.Logger().Info("watching for changes", "roots", w.Roots())
	return w.Run(ctx)
}
