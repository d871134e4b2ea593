// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// OutputYAML prints the merged configuration as YAML.
	OutputYAML OutputFormat = "yaml"
	// OutputJSON prints the merged configuration as indented JSON.
	OutputJSON OutputFormat = "json"
	// OutputTOML prints the merged configuration as TOML.
	OutputTOML OutputFormat = "toml"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultDebounce is the default quiet period before the watcher reloads.
	DefaultDebounce = 250 * time.Millisecond
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidWatchConfig is returned when a WatchConfig has invalid fields.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects the encoding of `taskconf load`.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds taskconf's settings.
	Config struct {
		// Patterns are loaded when no pattern is given on the command line.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
		// Cwd anchors relative patterns. Empty means the working directory.
		Cwd string `json:"cwd" mapstructure:"cwd"`
		// DataFile holds the shared data handed to factories.
		DataFile string `json:"data_file" mapstructure:"data_file"`
		// Output selects the encoding of the merged result.
		Output OutputFormat `json:"output" mapstructure:"output"`
		// FallbackNaming stores non-mapping contributions under the file stem.
		FallbackNaming bool `json:"fallback_naming" mapstructure:"fallback_naming"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures `taskconf watch`.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables per-file load diagnostics.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Debug adds the resolved file list and a shared-data dump.
		Debug bool `json:"debug" mapstructure:"debug"`
		// ColorScheme sets the color scheme.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// WatchConfig configures the file watcher.
	WatchConfig struct {
		// Debounce is the quiet period after the last change before reloading.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// Ignore lists glob patterns whose changes never trigger a reload.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}
)

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: yaml, json, toml)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputYAML, OutputJSON, OutputTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// IsValid returns whether the WatchConfig has valid fields.
func (c WatchConfig) IsValid() (bool, []error) {
	if c.Debounce < 0 {
		return false, []error{fmt.Errorf("%w: negative debounce %s", ErrInvalidWatchConfig, c.Debounce)}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Watch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors, so errors.Is matches both the
// sentinel and the specific field failure.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Patterns:       []string{},
		Output:         OutputYAML,
		FallbackNaming: false,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
			Ignore:   []string{},
		},
	}
}
