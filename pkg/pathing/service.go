package pathing

import (
	"os"
	"path/filepath"
)

// EnsureDirs creates the data and config directories on startup.
func EnsureDirs() error {
	// Directories that must exist:
	dirs := []string{
		GetDataDir(),
		GetConfigDir(),
	}

	// Create all directories
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

func GetSettingsDbPath() string {
	// Join path
	return filepath.Join(GetDataDir(), "tou-settings.db")
}

func GetConfigFile(name string) string {
	return filepath.Join(GetConfigDir(), name)
}

// SOLAR_TOU_DATA_DIR and SOLAR_TOU_CONFIG_DIR override the system locations.
func GetDataDir() string {
	if dir := os.Getenv("SOLAR_TOU_DATA_DIR"); dir != "" {
		return dir
	}
	return "/var/lib/solar_tou_analytics"
}

func GetConfigDir() string {
	if dir := os.Getenv("SOLAR_TOU_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/solar_tou_analytics"
}
