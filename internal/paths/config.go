// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
)

// LocalConfigFile is the project-local config, relative to the working
// directory.
var LocalConfigFile = filepath.Join(".snippetleaf", "config.yaml")

// UserConfigFile returns ~/.config/snippetleaf/config.yaml, or the local
// config path when the home directory is unknown.
func UserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return LocalConfigFile
	}
	return filepath.Join(home, ".config", "snippetleaf", "config.yaml")
}

// ResolveConfigFile picks the config file to use.
//
// Lookup order:
//   - explicit, when not empty
//   - .snippetleaf/config.yaml in the working directory, when it exists
//   - ~/.config/snippetleaf/config.yaml
//
// The returned file may not exist yet.
func ResolveConfigFile(explicit string) string {
	if explicit != "" {
		return filepath.Clean(explicit)
	}
	if _, err := os.Stat(LocalConfigFile); err == nil {
		return LocalConfigFile
	}
	return UserConfigFile()
}
