// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"mvdan.cc/sh/v3/shell"

	"github.com/invowk/taskconf/internal/issue"
	"github.com/invowk/taskconf/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "taskconf"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "taskconf"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKCONF"
)

//go:embed config_schema.cue
var configSchema string

// Schema returns the CUE schema settings files are validated against.
func Schema() string {
	return configSchema
}

// ConfigDir returns the taskconf configuration directory using platform-specific
// conventions (os.UserConfigDir): Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME (defaulting
// to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// DefaultPath returns where `taskconf config init` writes the settings file.
func DefaultPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// ResolvePath returns the settings file opts select, in precedence order: the explicit
// file, the config directory, then ./taskconf.cue. found is false when no file
// exists; path is then empty.
func ResolvePath(opts LoadOptions) (path string, found bool, err error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", false, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'taskconf config init' to create a default file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, true, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", false, err
	}

	candidates := []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		filepath.Join(opts.BaseDir, ConfigFileName+"."+ConfigFileExt),
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath, found, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if found {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the schema ('taskconf config dump --schema')").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the " + EnvPrefix + "_* environment variables").
			Wrap(errs[0]).
			BuildError()
	}

	patterns, err := ExpandPatterns(cfg.Patterns, opts.Env)
	if err != nil {
		return nil, "", err
	}
	cfg.Patterns = patterns

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance holding the defaults and bound to the
// TASKCONF_ environment.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("patterns", defaults.Patterns)
	v.SetDefault("cwd", defaults.Cwd)
	v.SetDefault("data_file", defaults.DataFile)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("fallback_naming", defaults.FallbackNaming)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.debug", defaults.UI.Debug)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.ignore", defaults.Watch.Ignore)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE settings file against the #Config schema and
// merges it over Viper's defaults. Every field is optional, so the file need not be
// concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.ParseAndDecode[map[string]any]([]byte(configSchema), data, "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	)
	if err != nil {
		return err
	}

	// Environment overrides still win.
	if err := v.MergeConfigMap(*configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// ExpandPatterns expands environment references ($HOME, ${PROJECT:-app}) in each
// pattern, as inside double quotes: glob characters and a leading "!" are kept. env
// resolves variables; nil means the process environment.
func ExpandPatterns(patterns []string, env func(string) string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		expanded, err := shell.Expand(p, env)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("expand pattern").
				WithResource(p).
				WithSuggestion("Quote literal '$' characters as '\\$'").
				Wrap(err).
				BuildError()
		}
		if expanded != "" {
			out = append(out, expanded)
		}
	}
	return out, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default settings file to DefaultPath unless one
// exists. It returns the path and whether a file was written.
func CreateDefaultConfig() (string, bool, error) {
	cfgPath, err := DefaultPath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// taskconf settings\n")
	sb.WriteString("// Run 'taskconf config dump --schema' to print the schema.\n\n")

	sb.WriteString("patterns: [")
	for i, p := range cfg.Patterns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", p)
	}
	sb.WriteString("]\n")

	if cfg.Cwd != "" {
		fmt.Fprintf(&sb, "cwd: %q\n", cfg.Cwd)
	}
	if cfg.DataFile != "" {
		fmt.Fprintf(&sb, "data_file: %q\n", cfg.DataFile)
	}
	fmt.Fprintf(&sb, "output: %q\n", cfg.Output)
	fmt.Fprintf(&sb, "fallback_naming: %v\n", cfg.FallbackNaming)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tdebug: %v\n", cfg.UI.Debug)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	sb.WriteString("\tignore: [")
	for i, p := range cfg.Watch.Ignore {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", p)
	}
	sb.WriteString("]\n")
	sb.WriteString("}\n")

	return sb.String()
}
