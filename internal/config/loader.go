package config

import (
	"os"
	"path/filepath"
)

// FileName is the config file name in both the user and project locations.
const FileName = "dbg.conf"

// UserConfigPath returns <user config dir>/debug/dbg.conf, or "" when the
// platform has no user config directory.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "debug", FileName)
}

// ProjectConfigPath returns dbg.conf in the working directory.
func ProjectConfigPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return FileName
	}
	return filepath.Join(wd, FileName)
}
