// SPDX-License-Identifier: MPL-2.0

package taskconf

type (
	// Sink receives line-oriented diagnostic output.
	Sink interface {
		// Writeln writes one diagnostic line.
		Writeln(msg string)
		// Subhead writes a section header.
		Subhead(msg string)
		// OK marks the preceding step as successful.
		OK()
	}

	// Host is the surrounding task runner. The loader only reads its verbosity flags and
	// writes to its diagnostic sink; factories receive it unmodified.
	Host interface {
		Sink
		// Verbose reports whether per-file diagnostics are requested.
		Verbose() bool
		// Debug reports whether debug dumps are requested.
		Debug() bool
		// FailFatal aborts the enclosing build run. It is only called by the *OrFail
		// entry points.
		FailFatal(err error)
	}

	// OptionSource is implemented by hosts that expose runner options (the equivalent
	// of command-line --opt values) to script factories.
	OptionSource interface {
		Options() map[string]any
	}

	nopHost struct{}
)

func (nopHost) Writeln(string)  {}
func (nopHost) Subhead(string)  {}
func (nopHost) OK()             {}
func (nopHost) Verbose() bool   { return false }
func (nopHost) Debug() bool     { return false }
func (nopHost) FailFatal(error) {}

// orNop substitutes a silent host for nil.
func orNop(h Host) Host {
	if h == nil {
		return nopHost{}
	}
	return h
}

// HostValues is the projection of a host handed to script factories (CUE #host,
// HCL host, Starlark host argument). Go factories receive the Host itself.
func HostValues(h Host) map[string]any {
	h = orNop(h)
	opts := map[string]any{}
	if src, ok := h.(OptionSource); ok {
		for k, v := range src.Options() {
			opts[k] = v
		}
	}
	return map[string]any{
		"verbose": h.Verbose(),
		"debug":   h.Debug(),
		"options": opts,
	}
}
