// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the largest file the helpers accept (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	parseOptions struct {
		concrete bool
		filename string
	}

	// Option configures ParseAndDecode.
	Option func(*parseOptions)
)

// WithConcrete sets whether every value must be concrete after unification.
// Settings files, where every field is optional, pass false.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) { o.concrete = concrete }
}

// WithFilename names the input in error messages.
func WithFilename(name string) Option {
	return func(o *parseOptions) { o.filename = name }
}
