// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.starlark.net/starlark"

	"github.com/invowk/taskconf/internal/deepmerge"
)

// starlarkEntry is the global a module must bind.
const starlarkEntry = "config"

func starlarkFormat() Format {
	return Format{Name: "starlark", Extensions: []string{".star"}, Parse: parseStarlark}
}

// parseStarlark executes a Starlark module. The module binds config either to a
// dict (plain data) or to a function config(host, data) (a factory). The data dict a
// factory receives is a projection of the call's shared data; keys the factory adds,
// changes or deletes are written back after the call, so mutations reach later
// factories. Untouched keys keep their original Go values.
//
// Modules are executed on every load; nothing is cached between calls.
func parseStarlark(path string, src []byte) (Parsed, error) {
	thread := &starlark.Thread{Name: path, Print: func(*starlark.Thread, string) {}}
	globals, err := starlark.ExecFile(thread, path, src, nil) //nolint:staticcheck // ExecFileOptions is not needed for default dialect
	if err != nil {
		return Parsed{}, starlarkError(err)
	}

	entry, ok := globals[starlarkEntry]
	if !ok {
		return Parsed{}, fmt.Errorf("module does not bind %q", starlarkEntry)
	}

	fn, ok := entry.(starlark.Callable)
	if !ok {
		out, err := fromStarlark(entry)
		if err != nil {
			return Parsed{}, fmt.Errorf("%s: %w", starlarkEntry, err)
		}
		return Data(out), nil
	}

	return Invocable(func(host Host, data map[string]any) (any, error) {
		hostVal, err := toStarlark(HostValues(host))
		if err != nil {
			return nil, fmt.Errorf("host: %w", err)
		}
		if data == nil {
			data = map[string]any{}
		}
		dataVal, err := projectStarlark(data)
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		before, err := projectStarlark(data)
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}

		call := &starlark.Thread{Name: path, Print: func(_ *starlark.Thread, msg string) {
			orNop(host).Writeln(msg)
		}}
		res, err := starlark.Call(call, fn, starlark.Tuple{hostVal, dataVal}, nil)
		if err != nil {
			return nil, starlarkError(err)
		}

		if err := writeBack(data, before, dataVal); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}

		return fromStarlark(res)
	}), nil
}

func starlarkError(err error) error {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return errors.New(evalErr.Backtrace())
	}
	return err
}

func fromStarlark(v starlark.Value) (any, error) {
	switch t := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(t), nil
	case starlark.Int:
		i, ok := t.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", t.String())
		}
		return i, nil
	case starlark.Float:
		return float64(t), nil
	case starlark.String:
		return string(t), nil
	case *starlark.List:
		out := make([]any, t.Len())
		for i := range t.Len() {
			elem, err := fromStarlark(t.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	case starlark.Tuple:
		out := make([]any, len(t))
		for i, item := range t {
			elem, err := fromStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, t.Len())
		for _, item := range t.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is not a string", item[0].String())
			}
			elem, err := fromStarlark(item[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", string(key), err)
			}
			out[string(key)] = elem
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported starlark value of type %s", v.Type())
	}
}

func toStarlark(v any) (starlark.Value, error) {
	switch t := deepmerge.Normalize(v).(type) {
	case nil:
		return starlark.None, nil
	case bool:
		return starlark.Bool(t), nil
	case string:
		return starlark.String(t), nil
	case int:
		return starlark.MakeInt(t), nil
	case int8:
		return starlark.MakeInt64(int64(t)), nil
	case int16:
		return starlark.MakeInt64(int64(t)), nil
	case int32:
		return starlark.MakeInt64(int64(t)), nil
	case int64:
		return starlark.MakeInt64(t), nil
	case uint:
		return starlark.MakeUint(t), nil
	case uint8:
		return starlark.MakeUint64(uint64(t)), nil
	case uint16:
		return starlark.MakeUint64(uint64(t)), nil
	case uint32:
		return starlark.MakeUint64(uint64(t)), nil
	case uint64:
		return starlark.MakeUint64(t), nil
	case float32:
		return starlark.Float(t), nil
	case float64:
		return starlark.Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return starlark.MakeInt64(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return starlark.Float(f), nil
	case map[string]any:
		d := starlark.NewDict(len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			elem, err := toStarlark(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			if err := d.SetKey(starlark.String(k), elem); err != nil {
				return nil, err
			}
		}
		return d, nil
	case []any:
		elems := make([]starlark.Value, len(t))
		for i, item := range t {
			elem, err := toStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = elem
		}
		return starlark.NewList(elems), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", t)
	}
}

// projectStarlark builds the dict a factory sees for data.
func projectStarlark(data map[string]any) (*starlark.Dict, error) {
	v, err := toStarlark(scriptView(data))
	if err != nil {
		return nil, err
	}
	return v.(*starlark.Dict), nil
}

// writeBack applies the keys of after that differ from before to data, and removes
// the keys the factory deleted.
func writeBack(data map[string]any, before, after *starlark.Dict) error {
	for _, item := range before.Items() {
		_, found, err := after.Get(item[0])
		if err != nil {
			return err
		}
		if !found {
			delete(data, string(item[0].(starlark.String)))
		}
	}
	for _, item := range after.Items() {
		key, ok := item[0].(starlark.String)
		if !ok {
			return fmt.Errorf("dict key %s is not a string", item[0].String())
		}
		old, found, err := before.Get(key)
		if err != nil {
			return err
		}
		if found {
			same, err := starlark.Equal(old, item[1])
			if err != nil {
				return fmt.Errorf("%s: %w", string(key), err)
			}
			if same {
				continue
			}
		}
		val, err := fromStarlark(item[1])
		if err != nil {
			return fmt.Errorf("%s: %w", string(key), err)
		}
		data[string(key)] = val
	}
	return nil
}
