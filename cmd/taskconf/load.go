// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/invowk/taskconf/internal/config"
	"github.com/invowk/taskconf/internal/console"
	"github.com/invowk/taskconf/internal/issue"
	"github.com/invowk/taskconf/pkg/taskconf"
)

type (
	// loadFlags are the flags shared by load and watch.
	loadFlags struct {
		dataFile       string
		output         string
		flat           bool
		fallbackNaming bool
		cwd            string
		opts           []string
	}

	// loadRequest is one fully resolved load: flags first, then settings.
	loadRequest struct {
		Options  taskconf.Options
		DataFile string
		Output   config.OutputFormat
		Flat     bool
		HostOpts map[string]any
	}
)

func newLoadCommand(app *App, root *rootOptions) *cobra.Command {
	flags := &loadFlags{}

	loadCmd := &cobra.Command{
		Use:   "load [patterns...]",
		Short: "Load config files and print the merged result",
		Long: `Load every file matched by the patterns, in order, and print the deep merge
of their contributions. Patterns prefixed with '!' remove earlier matches.
Without patterns, the patterns of the settings file are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.resolve(root.settingsOrDefault(), args, cmd.Flags())
			if err != nil {
				return err
			}
			host := root.newConsole(app, req.HostOpts)
			return runLoad(app, host, req, app.Stdout())
		},
	}

	flags.register(loadCmd.Flags())
	return loadCmd
}

func (f *loadFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.dataFile, "data", "", "file holding the shared data passed to factories (any data format)")
	fs.StringVarP(&f.output, "output", "o", "", "output format: yaml, json or toml (default from settings, else yaml)")
	fs.BoolVar(&f.flat, "flat", false, "print dotted keys instead of nested mappings")
	fs.BoolVar(&f.fallbackNaming, "fallback-naming", false, "store non-mapping files under their file name")
	fs.StringVar(&f.cwd, "cwd", "", "directory relative patterns are anchored at")
	fs.StringArrayVar(&f.opts, "opt", nil, "option visible to factories as key=value (repeatable)")
}

// resolve combines flags, positional patterns and settings. Flags that were set win
// over settings; patterns on the command line replace the configured ones.
func (f *loadFlags) resolve(settings *config.Config, args []string, fs *pflag.FlagSet) (loadRequest, error) {
	hostOpts, err := console.ParseOptions(f.opts)
	if err != nil {
		return loadRequest{}, err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = settings.Patterns
	}
	if len(patterns) == 0 {
		return loadRequest{}, issue.NewErrorContext().
			WithOperation("load config").
			WithSuggestions(
				"Pass patterns as arguments, e.g. 'taskconf load config/*'",
				"Or set 'patterns' in the settings file (see 'taskconf config path')",
			).
			Wrap(fmt.Errorf("no patterns given")).
			BuildError()
	}

	output := settings.Output
	if fs.Changed("output") {
		output = config.OutputFormat(strings.ToLower(f.output))
	}
	if output == "" {
		output = config.OutputYAML
	}
	if ok, errs := output.IsValid(); !ok {
		return loadRequest{}, errs[0]
	}

	req := loadRequest{
		Options: taskconf.Options{
			Src:            patterns,
			Cwd:            settings.Cwd,
			FallbackNaming: settings.FallbackNaming || f.fallbackNaming,
		},
		DataFile: settings.DataFile,
		Output:   output,
		Flat:     f.flat,
		HostOpts: hostOpts,
	}
	if fs.Changed("cwd") {
		req.Options.Cwd = f.cwd
	}
	if fs.Changed("data") {
		req.DataFile = f.dataFile
	}
	return req, nil
}

// runLoad loads req and writes the result to w. Loader failures are returned as
// ActionableErrors; in verbose mode the matching issue page is printed first.
func runLoad(app *App, host *console.Console, req loadRequest, w io.Writer) error {
	cfg, err := loadConfig(app, host, req)
	if err != nil {
		return err
	}
	return writeResult(w, cfg, req.Output, req.Flat)
}

// loadConfig reads the shared data file, loads the request and warns when nothing
// matched.
func loadConfig(app *App, host *console.Console, req loadRequest) (map[string]any, error) {
	var data map[string]any
	if req.DataFile != "" {
		d, err := app.Loader.ReadData(req.DataFile)
		if err != nil {
			return nil, reportLoadError(app, host, err)
		}
		data = d
	}

	cfg, err := app.Loader.Load(host, req.Options, data)
	if err != nil {
		return nil, reportLoadError(app, host, err)
	}

	if len(cfg) == 0 {
		if files, resolveErr := app.Loader.Resolve(taskconf.Normalize(req.Options)); resolveErr == nil && len(files) == 0 {
			host.Logger().Warn("no config files matched", "patterns", strings.Join(req.Options.Src, " "))
			if host.Verbose() {
				renderIssue(app, host, issue.Get(issue.NoFilesMatchedId))
			}
		}
	}
	return cfg, nil
}

// reportLoadError converts a loader error for display.
func reportLoadError(app *App, host *console.Console, err error) error {
	if host.Verbose() {
		renderIssue(app, host, issue.ForError(err))
	}
	return issue.FromLoadError(err)
}

// renderIssue prints an issue page to stderr. Rendering failures are logged.
func renderIssue(app *App, host *console.Console, entry *issue.Issue) {
	if entry == nil {
		return
	}
	rendered, err := entry.Render(glamourStyle(host))
	if err != nil {
		host.Logger().Warn("failed to render issue catalog entry", "issueID", entry.Id(), "error", err)
		return
	}
	fmt.Fprint(app.Stderr(), rendered)
}

// glamourStyle picks the markdown style matching the console's color scheme.
func glamourStyle(host *console.Console) string {
	switch host.ColorScheme() {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
