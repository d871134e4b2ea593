// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/invowk/taskconf/pkg/cueutil"
)

var (
	cueHostPath = cue.ParsePath("#host")
	cueDataPath = cue.ParsePath("#data")
)

func cueFormat() Format {
	return Format{Name: "cue", Extensions: []string{".cue"}, Parse: parseCUE}
}

// parseCUE compiles a CUE file. A file declaring #host or #data is a factory: the
// definitions are filled with the host projection and the shared data on invocation
// and the result must then be concrete. Declare them open (#data: _ or #data: {...})
// since the filled values carry arbitrary keys.
func parseCUE(path string, src []byte) (Parsed, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	if v.Err() != nil {
		return Parsed{}, cueutil.FormatError(v.Err(), path)
	}

	wantsHost := v.LookupPath(cueHostPath).Exists()
	wantsData := v.LookupPath(cueDataPath).Exists()
	if !wantsHost && !wantsData {
		out, err := cueutil.DecodeConcrete(v, path)
		if err != nil {
			return Parsed{}, err
		}
		return Data(out), nil
	}

	return Invocable(func(host Host, data map[string]any) (any, error) {
		filled := v
		if wantsHost {
			filled = filled.FillPath(cueHostPath, HostValues(host))
		}
		if wantsData {
			filled = filled.FillPath(cueDataPath, scriptView(data))
		}
		return cueutil.DecodeConcrete(filled, path)
	}), nil
}
