package app

import (
	"io"

	"uirunner/internal/config"
	"uirunner/internal/pipeline"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// SettingsPath is the tool settings file. Empty uses the default path.
	SettingsPath string

	// Request is the run to execute.
	Request pipeline.Request

	// Settings, when set, is used instead of loading SettingsPath.
	Settings *config.Config

	// Stdout receives the synthesized configuration and the stage report.
	// Stderr receives logs, progress and errors. Both default to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, settingsPath string, req pipeline.Request) *Config {
	return &Config{
		Debug:        debug,
		SettingsPath: settingsPath,
		Request:      req,
	}
}
