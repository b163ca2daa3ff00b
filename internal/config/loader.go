package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"uirunner/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/uirunner"
	configFileName = "config.yaml"
)

// osUserHomeDir is a variable to allow mocking in tests
var osUserHomeDir = os.UserHomeDir

// DefaultConfigPath returns ~/.config/uirunner/config.yaml, or an empty string
// when the home directory cannot be determined.
func DefaultConfigPath() string {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, userConfigDir, configFileName)
}

// LoadConfig loads tool settings from the given YAML file on top of the
// defaults. An empty path or a missing file yields the defaults.
func LoadConfig(configFilePath string) (Config, error) {
	config := GetDefaultConfig()
	if configFilePath == "" {
		logging.Debug("ConfigLoader", "No settings file configured, using defaults")
		return config, nil
	}

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No settings found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading settings from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading settings from %s: %w", configFilePath, err)
	}

	if err := Validate(config); err != nil {
		return Config{}, fmt.Errorf("invalid settings in %s: %w", configFilePath, err)
	}

	logging.Info("ConfigLoader", "Loaded settings from %s", configFilePath)
	return config, nil
}
