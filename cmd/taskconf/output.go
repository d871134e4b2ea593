// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/invowk/taskconf/internal/config"
	"github.com/invowk/taskconf/pkg/taskconf"
)

// writeResult encodes cfg to w in the requested format. flat prints one dotted key
// per leaf instead of nested mappings.
func writeResult(w io.Writer, cfg map[string]any, format config.OutputFormat, flat bool) error {
	if cfg == nil {
		cfg = map[string]any{}
	}
	if flat {
		cfg = taskconf.Flatten(cfg)
	}

	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case config.OutputTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	}
	return nil
}
