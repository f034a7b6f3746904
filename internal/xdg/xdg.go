// Package xdg provides helpers to resolve XDG Base Directory paths for dunequery.
// It implements the XDG Base Directory specification for determining appropriate
// locations for the configuration file and for generated HTML result reports.
//
// The package handles fallback to traditional locations when XDG environment
// variables are not set. Directories are created with private permissions since
// result reports may contain query output.
package xdg

import (
	"os"
	"path/filepath"
)

// appName is the directory name used under each XDG base.
const appName = "dunequery"

// ConfigDir returns the XDG config directory for dunequery.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/dunequery when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// ConfigLocation returns the XDG config directory for dunequery without
// creating it. Use it when only looking for an optional file.
func ConfigLocation() (string, error) {
	return locate("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for dunequery.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/dunequery when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// ReportsDir returns the directory holding generated HTML reports.
func ReportsDir() (string, error) {
	state, err := StateDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(state, "reports")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func resolve(envKey, homeFallback string) (string, error) {
	dir, err := locate(envKey, homeFallback)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

func locate(envKey, homeFallback string) (string, error) {
	base := os.Getenv(envKey)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeFallback)
	}
	return filepath.Join(base, appName), nil
}
