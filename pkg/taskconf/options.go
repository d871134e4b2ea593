// SPDX-License-Identifier: MPL-2.0

package taskconf

import "slices"

type (
	// Options is the structured form of a load request.
	Options struct {
		// Src lists glob patterns; "!"-prefixed patterns exclude earlier matches.
		Src []string
		// Cwd anchors relative patterns. Empty means the process working directory.
		Cwd string
		// FallbackNaming stores a non-mapping contribution under the file's stem
		// (tasks/lint.yaml holding a list becomes {"lint": [...]}) instead of failing.
		FallbackNaming bool
	}

	// Request is the normalized input of a load call.
	Request struct {
		Patterns       []string
		Cwd            string
		FallbackNaming bool
	}
)

// Normalize canonicalizes a caller's input into a Request. It accepts a string, a
// []string, a []any of strings, Options, *Options, Request, or a map[string]any with a
// "src" key and optional "cwd" and "fallbackNaming" keys. Other map keys are discarded.
// Input without a usable pattern yields a Request with no patterns, which matches
// nothing; Normalize never fails.
func Normalize(input any) Request {
	switch in := input.(type) {
	case nil:
		return Request{}
	case string:
		return Request{Patterns: patternsOf(in)}
	case []string:
		return Request{Patterns: patternsOf(in)}
	case []any:
		return Request{Patterns: patternsOf(in)}
	case Options:
		return Request{Patterns: patternsOf(in.Src), Cwd: in.Cwd, FallbackNaming: in.FallbackNaming}
	case *Options:
		if in == nil {
			return Request{}
		}
		return Normalize(*in)
	case Request:
		in.Patterns = patternsOf(in.Patterns)
		return in
	case map[string]any:
		req := Request{Patterns: patternsOf(in["src"])}
		if cwd, ok := in["cwd"].(string); ok {
			req.Cwd = cwd
		}
		for _, key := range []string{"fallbackNaming", "fallback_naming"} {
			if b, ok := in[key].(bool); ok {
				req.FallbackNaming = b
			}
		}
		return req
	default:
		return Request{}
	}
}

// patternsOf extracts the non-empty string patterns of src, preserving order.
func patternsOf(src any) []string {
	var out []string
	switch s := src.(type) {
	case string:
		if s != "" {
			out = append(out, s)
		}
	case []string:
		out = slices.DeleteFunc(slices.Clone(s), func(p string) bool { return p == "" })
	case []any:
		for _, item := range s {
			if p, ok := item.(string); ok && p != "" {
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
