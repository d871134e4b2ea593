// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/invowk/taskconf/internal/deepmerge"
)

// hclVariables are the root names that turn an HCL file into a factory.
var hclVariables = []string{"host", "data"}

// hclFunctions are available to every HCL expression.
var hclFunctions = map[string]function.Function{
	"coalesce":   stdlib.CoalesceFunc,
	"concat":     stdlib.ConcatFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"length":     stdlib.LengthFunc,
	"lower":      stdlib.LowerFunc,
	"merge":      stdlib.MergeFunc,
	"split":      stdlib.SplitFunc,
	"upper":      stdlib.UpperFunc,
}

func hclFormat() Format {
	return Format{Name: "hcl", Extensions: []string{".hcl"}, Parse: parseHCL}
}

// parseHCL reads an attribute-only HCL body:
//
//	jshint = {
//	  options = { jshintrc = ".jshintrc" }
//	  all     = ["Gruntfile.js", "lib/*.js"]
//	}
//
// When any expression references host or data the file is a factory and those
// variables are bound on invocation.
func parseHCL(path string, src []byte) (Parsed, error) {
	file, diags := hclsyntax.ParseConfig(src, path, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return Parsed{}, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return Parsed{}, diags
	}

	if !referencesAny(attrs, hclVariables) {
		out, err := evalAttributes(attrs, &hcl.EvalContext{Functions: hclFunctions})
		if err != nil {
			return Parsed{}, err
		}
		return Data(out), nil
	}

	return Invocable(func(host Host, data map[string]any) (any, error) {
		hostVal, err := toCty(HostValues(host))
		if err != nil {
			return nil, fmt.Errorf("host: %w", err)
		}
		dataVal, err := toCty(scriptView(data))
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		return evalAttributes(attrs, &hcl.EvalContext{
			Variables: map[string]cty.Value{"host": hostVal, "data": dataVal},
			Functions: hclFunctions,
		})
	}), nil
}

func referencesAny(attrs hcl.Attributes, roots []string) bool {
	for _, attr := range attrs {
		for _, traversal := range attr.Expr.Variables() {
			if slices.Contains(roots, traversal.RootName()) {
				return true
			}
		}
	}
	return false
}

func evalAttributes(attrs hcl.Attributes, ctx *hcl.EvalContext) (map[string]any, error) {
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = native
	}
	return out, nil
}

// ctyToNative converts an evaluated cty.Value into a plain Go tree. Whole numbers
// become int64, others float64.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	v, _ = v.Unmark()

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}

// toCty converts a plain Go tree into a cty.Value. Mappings become objects and
// sequences tuples, so heterogeneous values are allowed.
func toCty(v any) (cty.Value, error) {
	switch t := deepmerge.Normalize(v).(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int8:
		return cty.NumberIntVal(int64(t)), nil
	case int16:
		return cty.NumberIntVal(int64(t)), nil
	case int32:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float32:
		return cty.NumberFloatVal(float64(t)), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case json.Number:
		return cty.ParseNumberVal(t.String())
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, elem := range t {
			cv, err := toCty(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(t))
		for i, elem := range t {
			cv, err := toCty(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = cv
		}
		return cty.TupleVal(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", t)
	}
}
