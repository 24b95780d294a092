package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HomeEnv overrides the configuration directory
	HomeEnv = "DFSPANEL_HOME"
)

var (
	// ConfigDir is the global configuration directory (~/.dfspanel)
	ConfigDir string

	// DatabasePath is the SQLite database holding the local slots and generation history
	DatabasePath string

	// LogFile receives logs while the TUI owns the terminal
	LogFile string

	// KeybindsPath holds user keybinding overrides for the TUI
	KeybindsPath string
)

// Initialize sets up the configuration directory and paths
// It creates ~/.dfspanel/ (or $DFSPANEL_HOME) if it doesn't exist
func Initialize() error {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".dfspanel")
	}

	SetConfigDir(dir)

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// SetConfigDir points every derived path at dir without touching the filesystem
func SetConfigDir(dir string) {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "dfspanel.db")
	LogFile = filepath.Join(ConfigDir, "dfspanel.log")
	KeybindsPath = filepath.Join(ConfigDir, "keybinds.json")
}

// SettingsCandidates returns the settings file names checked in order
// A local file in the working directory wins over the global one
func SettingsCandidates() []string {
	names := []string{"settings.yaml", "settings.yml", "settings.jsonc", "settings.json"}

	var paths []string
	for _, name := range names {
		paths = append(paths, filepath.Join(".dfspanel", name))
	}
	for _, name := range names {
		paths = append(paths, filepath.Join(ConfigDir, name))
	}
	return paths
}

// FindSettingsFile returns the first existing settings file, or "" if none
func FindSettingsFile() string {
	for _, path := range SettingsCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
