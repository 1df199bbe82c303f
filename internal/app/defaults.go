package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults holds the application default paths.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CIID_CONFIG_PATH: config file location (default: ~/.config/ciid.toml)
//   - CIID_HOME: base directory for ciid data (default: ~/.local/share/ciid)
func GetDefaults() (*Defaults, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking CIID_CONFIG_PATH env var first,
// then falling back to the default ~/.config/ciid.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("CIID_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ciid.toml"), nil
}

// getBaseDir returns the base directory for ciid data, checking CIID_HOME env var first,
// then falling back to the XDG default ~/.local/share/ciid.
func getBaseDir() (string, error) {
	if path := os.Getenv("CIID_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "ciid"), nil
}
