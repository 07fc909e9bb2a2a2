package config

import (
	"fmt"
	"os"
)

// InitConfig writes a fully defaulted configuration file to the given path
// (or the default location when path is empty). Used by 'ftpot init'.
//
// Refuses to overwrite an existing file unless force is set.
func InitConfig(path string, force bool) (string, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	cfg := GetDefaultConfig()
	if err := SaveConfig(cfg, path); err != nil {
		return "", err
	}

	return path, nil
}
