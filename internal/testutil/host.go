// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"strings"
	"sync"
)

// RecordingHost is an in-memory task-runner host. It records every diagnostic call
// as one line: Writeln lines verbatim, Subhead lines prefixed with "## " and OK calls
// as "OK". It is safe for concurrent use.
type RecordingHost struct {
	VerboseFlag bool
	DebugFlag   bool
	Opts        map[string]any

	mu     sync.Mutex
	lines  []string
	fatals []error
}

// Writeln records msg.
func (h *RecordingHost) Writeln(msg string) {
	h.record(msg)
}

// Subhead records msg as a header.
func (h *RecordingHost) Subhead(msg string) {
	h.record("## " + msg)
}

// OK records a success mark.
func (h *RecordingHost) OK() {
	h.record("OK")
}

// Verbose returns VerboseFlag.
func (h *RecordingHost) Verbose() bool { return h.VerboseFlag }

// Debug returns DebugFlag.
func (h *RecordingHost) Debug() bool { return h.DebugFlag }

// Options returns Opts.
func (h *RecordingHost) Options() map[string]any { return h.Opts }

// FailFatal records err instead of aborting.
func (h *RecordingHost) FailFatal(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fatals = append(h.fatals, err)
}

// Lines returns a copy of the recorded lines.
func (h *RecordingHost) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.lines...)
}

// Output returns the recorded lines joined by newlines.
func (h *RecordingHost) Output() string {
	return strings.Join(h.Lines(), "\n")
}

// Fatals returns the errors passed to FailFatal.
func (h *RecordingHost) Fatals() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.fatals...)
}

func (h *RecordingHost) record(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
}
