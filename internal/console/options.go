// SPDX-License-Identifier: MPL-2.0

package console

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidOption is returned for a malformed --opt value.
var ErrInvalidOption = errors.New("invalid option")

// ParseOptions turns "key=value" pairs into an options map. Values are read as YAML
// scalars, so "3" is an int and "true" a bool; a bare "key" is true and "no-key" is
// false. Later pairs override earlier ones.
func ParseOptions(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, hasValue := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w %q: missing key", ErrInvalidOption, pair)
		}
		if !hasValue {
			if name, negated := strings.CutPrefix(key, "no-"); negated && name != "" {
				out[name] = false
			} else {
				out[key] = true
			}
			continue
		}
		out[key] = scalar(raw)
	}
	return out, nil
}

// scalar decodes raw as a single YAML scalar, falling back to the raw string.
func scalar(raw string) any {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil || len(node.Content) != 1 {
		return raw
	}
	if node.Content[0].Kind != yaml.ScalarNode {
		return raw
	}
	var v any
	if err := node.Content[0].Decode(&v); err != nil || v == nil {
		return raw
	}
	return v
}
