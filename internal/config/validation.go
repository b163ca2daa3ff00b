package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) {
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// Validate checks that the settings can drive the external tools.
func Validate(c Config) error {
	var errs ValidationErrors

	if strings.TrimSpace(c.Workspace.Dir) == "" {
		errs.Add("workspace.dir", "must not be empty", c.Workspace.Dir)
	} else if !isSubdirectory(c.Workspace.Dir) {
		errs.Add("workspace.dir", "must be a relative path below the current directory", c.Workspace.Dir)
	}
	if strings.TrimSpace(c.Build.Dotnet) == "" {
		errs.Add("build.dotnet", "must not be empty", c.Build.Dotnet)
	}
	if c.Appium.Port <= 0 || c.Appium.Port > 65535 {
		errs.Add("appium.port", "must be between 1 and 65535", c.Appium.Port)
	}
	if c.Appium.StartupTimeout <= 0 {
		errs.Add("appium.startupTimeout", "must be positive", c.Appium.StartupTimeout)
	}
	if c.Android.APILevel <= 0 {
		errs.Add("android.apiLevel", "must be positive", c.Android.APILevel)
	}
	if strings.TrimSpace(c.Android.AVDName) == "" {
		errs.Add("android.avdName", "must not be empty", c.Android.AVDName)
	}
	if c.Android.BootTimeout <= 0 {
		errs.Add("android.bootTimeout", "must be positive", c.Android.BootTimeout)
	}
	if c.Android.ShutdownGrace <= 0 {
		errs.Add("android.shutdownGrace", "must be positive", c.Android.ShutdownGrace)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// isSubdirectory reports whether dir names a directory strictly below the one
// it is resolved against. The workspace root is wiped on every run.
func isSubdirectory(dir string) bool {
	if filepath.IsAbs(dir) || filepath.VolumeName(dir) != "" {
		return false
	}
	clean := filepath.Clean(dir)
	if clean == "." || clean == ".." {
		return false
	}
	return !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}
