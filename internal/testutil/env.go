package testutil

import (
	"path/filepath"
	"testing"
)

// EnvVars are the variables that influence dbg's configuration.
var EnvVars = []string{"DBG_COLOR", "DBG_STYLE", "DBG_INDENT", "NO_COLOR"}

// Isolate moves the test into an empty working directory with no user
// configuration and no DBG_* variables, and returns the directory.
func Isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("AppData", filepath.Join(dir, "AppData"))
	for _, name := range EnvVars {
		t.Setenv(name, "")
	}
	t.Chdir(dir)
	return dir
}
