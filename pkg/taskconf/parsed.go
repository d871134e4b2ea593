// SPDX-License-Identifier: MPL-2.0

package taskconf

const (
	parsedData parsedKind = iota
	parsedFactory
)

type (
	parsedKind uint8

	// Factory produces a file's contribution from the host and the call's shared data.
	// data is the same map for every factory of one load call; changes a factory makes
	// are visible to the factories of later files in that call.
	Factory func(host Host, data map[string]any) (any, error)

	// Parsed is the result of parsing one file: either plain data or a Factory. The
	// distinction is made once, at the parse boundary.
	Parsed struct {
		kind    parsedKind
		value   any
		factory Factory
	}
)

// Data wraps a plain value used directly as a contribution.
func Data(v any) Parsed {
	return Parsed{kind: parsedData, value: v}
}

// Invocable wraps a factory. A nil factory yields an empty Data value.
func Invocable(f Factory) Parsed {
	if f == nil {
		return Data(nil)
	}
	return Parsed{kind: parsedFactory, factory: f}
}

// IsFactory reports whether the file must be invoked to obtain its contribution.
func (p Parsed) IsFactory() bool {
	return p.kind == parsedFactory
}

// Value returns the plain value. It is nil for factories.
func (p Parsed) Value() any {
	return p.value
}

// Factory returns the factory, or nil for plain data.
func (p Parsed) Factory() Factory {
	return p.factory
}
