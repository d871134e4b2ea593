// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func yamlFormat() Format {
	return Format{Name: "yaml", Extensions: []string{".yaml", ".yml"}, Parse: parseYAML}
}

func jsonFormat() Format {
	return Format{Name: "json", Extensions: []string{".json"}, Parse: parseJSON}
}

func tomlFormat() Format {
	return Format{Name: "toml", Extensions: []string{".toml"}, Parse: parseTOML}
}

// parseYAML decodes the first document of src. An empty file is an empty
// contribution.
func parseYAML(_ string, src []byte) (Parsed, error) {
	var v any
	if err := yaml.Unmarshal(src, &v); err != nil {
		return Parsed{}, err
	}
	return Data(v), nil
}

// parseJSON requires exactly one JSON value.
func parseJSON(_ string, src []byte) (Parsed, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return Parsed{}, errors.New("unexpected end of JSON input")
		}
		return Parsed{}, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Parsed{}, fmt.Errorf("invalid character after top-level value at offset %d", dec.InputOffset())
	}
	return Data(v), nil
}

func parseTOML(_ string, src []byte) (Parsed, error) {
	var v map[string]any
	if err := toml.Unmarshal(src, &v); err != nil {
		return Parsed{}, err
	}
	return Data(v), nil
}
