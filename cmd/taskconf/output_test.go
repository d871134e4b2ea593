// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"testing"

	"github.com/invowk/taskconf/internal/config"
)

func TestWriteResult(t *testing.T) {
	t.Parallel()

	cfg := map[string]any{
		"copy": map[string]any{"flat": true, "targets": []any{"a", "b"}},
	}

	tests := []struct {
		name   string
		cfg    map[string]any
		format config.OutputFormat
		flat   bool
		want   string
	}{
		{"yaml", cfg, config.OutputYAML, false, "copy:\n  flat: true\n  targets:\n    - a\n    - b\n"},
		{"yaml flat", cfg, config.OutputYAML, true, "copy.flat: true\ncopy.targets:\n  - a\n  - b\n"},
		{"json", cfg, config.OutputJSON, false, "{\n  \"copy\": {\n    \"flat\": true,\n    \"targets\": [\n      \"a\",\n      \"b\"\n    ]\n  }\n}\n"},
		{"nil yaml", nil, config.OutputYAML, false, "{}\n"},
		{"nil json", nil, config.OutputJSON, false, "{}\n"},
		{"unknown format falls back to yaml", map[string]any{"a": 1}, "", false, "a: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := writeResult(&buf, tt.cfg, tt.format, tt.flat); err != nil {
				t.Fatalf("writeResult() error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("writeResult() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}
