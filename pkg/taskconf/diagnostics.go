// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Diagnostics is the verbosity configuration of one load call, read once from the
// Host and threaded through the pipeline. Output is best effort: a panicking sink is
// swallowed and never fails the load.
type Diagnostics struct {
	Verbose bool
	Debug   bool
	sink    Sink
}

// NewDiagnostics builds a Diagnostics writing to sink.
func NewDiagnostics(verbose, debug bool, sink Sink) Diagnostics {
	return Diagnostics{Verbose: verbose, Debug: debug, sink: sink}
}

// DiagnosticsFor reads the host's flags.
func DiagnosticsFor(h Host) Diagnostics {
	h = orNop(h)
	return NewDiagnostics(h.Verbose(), h.Debug(), h)
}

func (d Diagnostics) emit(fn func(Sink)) {
	if d.sink == nil {
		return
	}
	defer func() { _ = recover() }()
	fn(d.sink)
}

// resolved reports the file set. The header helps locate the source of the
// following per-file lines.
func (d Diagnostics) resolved(files []string) {
	if !d.Verbose && !d.Debug {
		return
	}
	d.emit(func(s Sink) {
		s.Subhead(fmt.Sprintf("Loading config data from %d file(s).", len(files)))
		if d.Debug {
			for _, f := range files {
				s.Writeln("  " + f)
			}
		}
	})
}

func (d Diagnostics) loading(path string) {
	if !d.Verbose {
		return
	}
	d.emit(func(s Sink) { s.Writeln("Loading " + path + "...") })
}

func (d Diagnostics) invoking() {
	if !d.Verbose {
		return
	}
	d.emit(func(s Sink) { s.Writeln("is a factory, invoking...") })
}

// loaded summarizes a contribution: one line per top-level key, with the nested
// keys and their count for mapping values.
func (d Diagnostics) loaded(contribution map[string]any) {
	if !d.Verbose {
		return
	}
	d.emit(func(s Sink) {
		s.OK()
		for _, key := range slices.Sorted(maps.Keys(contribution)) {
			s.Writeln(summarizeKey(key, contribution[key]))
		}
	})
}

func summarizeKey(key string, value any) string {
	nested, ok := value.(map[string]any)
	if !ok || len(nested) == 0 {
		return "+ " + key
	}
	keys := slices.Sorted(maps.Keys(nested))
	noun := "keys"
	if len(keys) == 1 {
		noun = "key"
	}
	return fmt.Sprintf("+ %s: [%s] (%d %s)", key, strings.Join(keys, ", "), len(keys), noun)
}

// sharedData dumps the shared data as it stands after every factory ran.
func (d Diagnostics) sharedData(data map[string]any) {
	if !d.Debug {
		return
	}
	d.emit(func(s Sink) {
		s.Writeln("Dumping shared data after loading:")
		out, err := yaml.Marshal(data)
		if err != nil {
			s.Writeln(fmt.Sprintf("  (unavailable: %v)", err))
			return
		}
		for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			s.Writeln("  " + line)
		}
	})
}
