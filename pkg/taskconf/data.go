// SPDX-License-Identifier: MPL-2.0

package taskconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invowk/taskconf/internal/deepmerge"
	"github.com/invowk/taskconf/pkg/cueutil"
)

// ErrDataFileFactory is returned by ReadData for a file that parses to a factory.
var ErrDataFileFactory = errors.New("shared data file must hold plain data")

// ReadData reads a shared-data mapping from a file in any registered data format, so
// hosts can seed the data argument of Load from disk. Files that parse to a factory
// are rejected; an empty document yields an empty map.
func (l *Loader) ReadData(path string) (map[string]any, error) {
	ext := filepath.Ext(path)
	format, ok := l.registry.Lookup(ext)
	if !ok || ext == "" {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrUnrecognizedFormat}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrParseFailure, Cause: err}
	}
	if err := cueutil.CheckFileSize(src, l.maxFileSize, filepath.Base(path)); err != nil {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrParseFailure, Cause: err}
	}

	parsed, err := parse(format, path, src)
	if err != nil {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrParseFailure, Cause: err}
	}
	if parsed.IsFactory() {
		return nil, &FileError{Path: path, Ext: ext, Kind: ErrInvalidContribution, Cause: ErrDataFileFactory}
	}

	switch v := deepmerge.Normalize(parsed.Value()).(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, &FileError{
			Path: path, Ext: ext, Kind: ErrInvalidContribution,
			Cause: fmt.Errorf("top-level value is %T, want a mapping", parsed.Value()),
		}
	}
}
