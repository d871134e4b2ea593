// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// These tests verify Go struct JSON tags match CUE schema field names, catching
// misalignments that would otherwise be silently dropped by Viper.

// extractCUEFields returns the regular top-level field names of a CUE struct.
func extractCUEFields(t *testing.T, val cue.Value) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType().IsHidden() || sel.IsDefinition() {
			continue
		}
		fields[strings.TrimSuffix(sel.String(), "?")] = true
	}
	return fields
}

// extractGoJSONTags returns the JSON names of a struct's exported fields.
func extractGoJSONTags(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	if typ.Kind() != reflect.Struct {
		t.Fatalf("expected struct type, got %s", typ.Kind())
	}

	fields := make(map[string]bool)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = true
	}
	return fields
}

func assertFieldsSync(t *testing.T, structName string, cueFields, goFields map[string]bool) {
	t.Helper()

	for field := range cueFields {
		if !goFields[field] {
			t.Errorf("[%s] CUE field %q not found in Go struct (missing JSON tag)", structName, field)
		}
	}
	for field := range goFields {
		if !cueFields[field] {
			t.Errorf("[%s] Go JSON tag %q not found in CUE schema (missing CUE field)", structName, field)
		}
	}
}

func lookupDefinition(t *testing.T, defPath string) cue.Value {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath(defPath))
	if def.Err() != nil {
		t.Fatalf("failed to lookup CUE definition %s: %v", defPath, def.Err())
	}
	return def
}

func TestSchemaSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		def string
		typ reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
		{"#WatchConfig", reflect.TypeFor[WatchConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			t.Parallel()

			assertFieldsSync(t, tt.typ.Name(), extractCUEFields(t, lookupDefinition(t, tt.def)), extractGoJSONTags(t, tt.typ))
		})
	}
}

func TestSchemaAcceptsEveryOutputFormat(t *testing.T) {
	t.Parallel()

	def := lookupDefinition(t, "#OutputFormat")
	for _, f := range []OutputFormat{OutputYAML, OutputJSON, OutputTOML} {
		if err := def.Unify(def.Context().Encode(string(f))).Validate(cue.Concrete(true)); err != nil {
			t.Errorf("schema rejects output %q: %v", f, err)
		}
	}
	if err := def.Unify(def.Context().Encode("xml")).Validate(cue.Concrete(true)); err == nil {
		t.Error("schema should reject output \"xml\"")
	}
}
