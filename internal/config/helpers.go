package config

import (
	"os"
	"path/filepath"
)

// DefaultHomeDir returns the default AIKG home directory. It uses ~/.aikg
// or falls back to a temporary directory if user home cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".aikg")
	}
	return filepath.Join(userHome, ".aikg")
}

// DefaultConfigPath returns the default config file path for a given home
// directory.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
