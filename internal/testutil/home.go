// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetConfigHome points os.UserConfigDir at dir and returns a cleanup function that
// restores the original environment.
//
// Platform handling:
//   - Windows: Sets APPDATA
//   - macOS: Sets HOME (config lives in $HOME/Library/Application Support)
//   - Others: Sets XDG_CONFIG_HOME
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(testutil.SetConfigHome(t, t.TempDir()))
//	    ...
//	}
func SetConfigHome(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "APPDATA", dir)
	case "darwin":
		return MustSetenv(t, "HOME", dir)
	default:
		return MustSetenv(t, "XDG_CONFIG_HOME", dir)
	}
}

// UserConfigDir returns the directory os.UserConfigDir resolves to after
// SetConfigHome(t, dir).
func UserConfigDir(dir string) string {
	if runtime.GOOS == "darwin" {
		return filepath.Join(dir, "Library", "Application Support")
	}
	return dir
}
