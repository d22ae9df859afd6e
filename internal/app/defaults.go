package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - ASO_CONFIG_PATH: config file location (default: ~/.config/aso.toml)
//   - ASO_HOME: base directory for aso data (default: ~/.local/share/aso)
//   - ASO_APPDATA: directory holding the editor's Unity folder (default: the OS user config dir)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	appDataDir, err := getAppDataDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"base_dir":     baseDir,
		"log_dir":      filepath.Join(baseDir, "log"),
		"app_data_dir": appDataDir,
	}, nil
}

// getConfigPath returns the config file path, checking ASO_CONFIG_PATH env var first,
// then falling back to the default ~/.config/aso.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("ASO_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "aso.toml"), nil
}

// getBaseDir returns the base directory for aso data, checking ASO_HOME env var first,
// then falling back to the XDG default ~/.local/share/aso.
func getBaseDir() (string, error) {
	if path := os.Getenv("ASO_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "aso"), nil
}

// getAppDataDir returns the application data directory the editor stores
// its Asset Store cache under (%APPDATA% on Windows).
func getAppDataDir() (string, error) {
	if path := os.Getenv("ASO_APPDATA"); path != "" {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine application data directory: %w", err)
	}
	return dir, nil
}
