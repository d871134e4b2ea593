// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/invowk/taskconf/internal/config"
	"github.com/invowk/taskconf/internal/console"
	"github.com/invowk/taskconf/internal/issue"
)

// newConfigCommand creates the `taskconf config` command tree.
func newConfigCommand(app *App, root *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage taskconf settings",
		Long: `Manage taskconf settings.

Settings are read from the first file found of:
  - the --config flag
  - Linux: ~/.config/taskconf/taskconf.cue
    macOS: ~/Library/Application Support/taskconf/taskconf.cue
    Windows: %APPDATA%\taskconf\taskconf.cue
  - ./taskconf.cue

Environment variables prefixed with TASKCONF_ override file values
(e.g. TASKCONF_OUTPUT=json, TASKCONF_UI_VERBOSE=true).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show where settings are read from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default settings file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app)
		},
	})

	var schemaOnly bool
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective settings as CUE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if schemaOnly {
				fmt.Fprint(app.Stdout(), config.Schema())
				return nil
			}
			fmt.Fprint(app.Stdout(), config.GenerateCUE(root.settingsOrDefault()))
			return nil
		},
	}
	dumpCmd.Flags().BoolVar(&schemaOnly, "schema", false, "print the schema settings are validated against")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(app *App, root *rootOptions) error {
	path, found, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: root.cfgFile})
	if err != nil {
		if entry := issue.Get(issue.ConfigLoadFailedId); entry != nil {
			if rendered, renderErr := entry.Render("auto"); renderErr == nil {
				fmt.Fprint(app.Stderr(), rendered)
			}
		}
		return err
	}

	cfg := root.settingsOrDefault()
	styles := console.NewStyles(lipgloss.NewRenderer(app.Stdout()))
	out := app.Stdout()
	key := func(k string) string { return styles.Key.Render(k) }
	value := func(v any) string { return styles.OK.Render(fmt.Sprint(v)) }
	list := func(items []string) string {
		if len(items) == 0 {
			return styles.Muted.Render("(none)")
		}
		return value(strings.Join(items, ", "))
	}

	fmt.Fprintln(out, styles.Subhead.Render("Current Settings"))
	fmt.Fprintln(out)
	if found {
		fmt.Fprintf(out, "%s: %s\n", key("Settings file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", key("Settings file"), styles.Muted.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", key("patterns"), list(cfg.Patterns))
	fmt.Fprintf(out, "%s: %s\n", key("cwd"), value(orDash(cfg.Cwd)))
	fmt.Fprintf(out, "%s: %s\n", key("data_file"), value(orDash(cfg.DataFile)))
	fmt.Fprintf(out, "%s: %s\n", key("output"), value(cfg.Output))
	fmt.Fprintf(out, "%s: %s\n", key("fallback_naming"), value(cfg.FallbackNaming))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", key("ui"))
	fmt.Fprintf(out, "  verbose: %s\n", value(cfg.UI.Verbose))
	fmt.Fprintf(out, "  debug: %s\n", value(cfg.UI.Debug))
	fmt.Fprintf(out, "  color_scheme: %s\n", value(cfg.UI.ColorScheme))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", key("watch"))
	fmt.Fprintf(out, "  debounce: %s\n", value(cfg.Watch.Debounce))
	fmt.Fprintf(out, "  ignore: %s\n", list(cfg.Watch.Ignore))

	return nil
}

func showConfigPath(app *App, root *rootOptions) error {
	defaultPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout(), "Default settings file: %s\n", defaultPath)

	path, found, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: root.cfgFile})
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(app.Stdout(), "Active settings file: %s\n", path)
	} else {
		fmt.Fprintln(app.Stdout(), "Active settings file: (none, using defaults)")
	}
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}

	styles := console.NewStyles(lipgloss.NewRenderer(app.Stdout()))
	if !created {
		fmt.Fprintf(app.Stdout(), "%s Settings file already exists at %s\n", styles.Warning.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.Stdout(), "%s Created default settings at %s\n", styles.OK.Render("✓"), path)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
