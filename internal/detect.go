package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DataPaths holds the detected on-disk locations used by fliey
type DataPaths struct {
	BasePath  string // per-user fliey directory
	SharedDir string // directory shared between the app and the share extension
}

// DetectDataPaths detects the fliey data paths based on the operating system
func DetectDataPaths() (DataPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var basePath string
	switch runtime.GOOS {
	case "darwin":
		basePath = filepath.Join(home, "Library/Application Support/fliey")
	case "linux":
		// Respect XDG_DATA_HOME when set
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			basePath = filepath.Join(xdg, "fliey")
		} else {
			basePath = filepath.Join(home, ".local/share/fliey")
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			basePath = filepath.Join(appData, "fliey")
		} else {
			basePath = filepath.Join(home, "AppData/Roaming/fliey")
		}
	default:
		return DataPaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return DataPaths{
		BasePath:  basePath,
		SharedDir: filepath.Join(basePath, "shared"),
	}, nil
}

// HistoryDBPath returns the path to the SQLite history database
func (dp DataPaths) HistoryDBPath() string {
	return filepath.Join(dp.BasePath, "history.db")
}

// HistoryYAMLPath returns the path to the YAML history document
func (dp DataPaths) HistoryYAMLPath() string {
	return filepath.Join(dp.BasePath, "history.yaml")
}

// Exists checks if the base directory has been created
func (dp DataPaths) Exists() bool {
	info, err := os.Stat(dp.BasePath)
	if err != nil {
		return false
	}
	return info.IsDir()
}
