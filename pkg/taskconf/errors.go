// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat is returned when a resolved file's extension has no
	// registered format.
	ErrUnrecognizedFormat = errors.New("unrecognized config file format")
	// ErrParseFailure is returned when a file cannot be read, parsed or loaded.
	ErrParseFailure = errors.New("failed to load config file")
	// ErrFactoryFailure is returned when a factory returns an error or panics.
	ErrFactoryFailure = errors.New("config factory failed")
	// ErrInvalidContribution is returned when a file produces something other than a
	// mapping and fallback naming is off.
	ErrInvalidContribution = errors.New("config file did not produce a mapping")
	// ErrResolutionFailure is returned when the patterns cannot be expanded.
	ErrResolutionFailure = errors.New("failed to resolve config patterns")
	// ErrNilTarget is returned by MergeInto when the target mapping is nil.
	ErrNilTarget = errors.New("merge target is nil")
)

// FileError reports a fatal failure attributed to one file. Kind is one of the
// sentinel errors above and matches through errors.Is; Cause is the underlying
// parser, loader or factory error.
type FileError struct {
	Path  string
	Ext   string
	Kind  error
	Cause error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	if errors.Is(e.Kind, ErrUnrecognizedFormat) {
		ext := e.Ext
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Sprintf("%s: %s: no format registered for extension %q", e.Kind, e.Path, ext)
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *FileError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the error's Kind.
func (e *FileError) Is(target error) bool {
	return target == e.Kind
}
