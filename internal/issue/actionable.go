// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/invowk/taskconf/pkg/taskconf"
)

type (
	// ActionableError is a user-facing error: the operation that failed, the file or
	// pattern involved, and hints for fixing it. Build one with ErrorContext:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("read shared data").
	//		WithResource("build.yaml").
	//		WithSuggestion("Check the YAML syntax").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		Cause       error
	}

	// ErrorContext accumulates the parts of an ActionableError.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
	}
)

func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to " + e.Operation)
	if e.Resource != "" {
		msg.WriteString(": " + e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": " + e.Cause.Error())
	}
	return msg.String()
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format appends the suggestions as a bullet list to Error. verbose also lists
// every error in the Unwrap chain of Cause, outermost first.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range e.Suggestions {
			msg.WriteString("\n  • " + suggestion)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
		}
	}

	return msg.String()
}

// WithOperation sets the verb phrase completing "failed to", e.g. "load config".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, sugs...)
	return c
}

// Wrap sets the cause, replacing any earlier one.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: slices.Clone(c.suggestions),
		Cause:       c.cause,
	}
}

// BuildError is Build as an error, keeping a nil result an untyped nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}

// FromLoadError describes a loader failure for the terminal. A *taskconf.FileError
// becomes an ActionableError naming the file, with suggestions for its kind; any
// other error is wrapped with the "load config" operation.
func FromLoadError(err error) *ActionableError {
	if err == nil {
		return nil
	}

	var fe *taskconf.FileError
	if !errors.As(err, &fe) {
		ctx := NewErrorContext().WithOperation("load config").Wrap(err)
		if errors.Is(err, taskconf.ErrResolutionFailure) {
			ctx.WithSuggestion("Check the glob syntax; brackets and braces must be closed")
		}
		return ctx.Build()
	}

	ctx := NewErrorContext().WithResource(fe.Path).Wrap(fe.Cause)
	switch {
	case errors.Is(fe, taskconf.ErrUnrecognizedFormat):
		ctx.WithOperation("recognize config file format").
			Wrap(fmt.Errorf("no format registered for extension %q", fe.Ext)).
			WithSuggestions(
				"Exclude the file with a negated pattern, e.g. '!"+fe.Path+"'",
				"Run 'taskconf formats' to list the supported extensions",
			)
	case errors.Is(fe, taskconf.ErrFactoryFailure):
		ctx.WithOperation("invoke config factory").
			WithSuggestion("Run with --debug to dump the shared data the factory received")
	case errors.Is(fe, taskconf.ErrInvalidContribution):
		ctx.WithOperation("merge config file").
			WithSuggestions(
				"Put the value under a top-level key",
				"Or use --fallback-naming to store it under the file name",
			)
	default:
		ctx.WithOperation("parse config file")
	}
	return ctx.Build()
}
