package config

import (
	"strconv"
	"time"
)

// Config is the top-level tool settings structure.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Build     BuildConfig     `yaml:"build"`
	Appium    AppiumConfig    `yaml:"appium"`
	Android   AndroidConfig   `yaml:"android"`
	IOS       IOSConfig       `yaml:"ios"`
}

// WorkspaceConfig controls the per-run scratch directory.
type WorkspaceConfig struct {
	Dir string `yaml:"dir,omitempty"` // Relative to the current directory (default: .uitest)
}

// BuildConfig controls the dotnet invocations.
type BuildConfig struct {
	Dotnet               string `yaml:"dotnet,omitempty"`               // dotnet executable (default: dotnet)
	DefaultConfiguration string `yaml:"defaultConfiguration,omitempty"` // Used when --configuration is empty
	IOSRuntimeIdentifier string `yaml:"iosRuntimeIdentifier,omitempty"` // RID for simulator builds (default: iossimulator-x64)
	TestLogger           string `yaml:"testLogger,omitempty"`           // dotnet test --logger value (default: trx)
}

// AppiumConfig controls the automation driver server.
type AppiumConfig struct {
	Host           string        `yaml:"host,omitempty"`
	Port           int           `yaml:"port,omitempty"`
	StartupTimeout time.Duration `yaml:"startupTimeout,omitempty"`
	ShutdownGrace  time.Duration `yaml:"shutdownGrace,omitempty"`
	AndroidDriver  string        `yaml:"androidDriver,omitempty"`
	IOSDriver      string        `yaml:"iosDriver,omitempty"`
}

// AndroidConfig controls emulator provisioning.
type AndroidConfig struct {
	APILevel      int           `yaml:"apiLevel,omitempty"`
	ABI           string        `yaml:"abi,omitempty"`
	ImageTag      string        `yaml:"imageTag,omitempty"`
	AVDName       string        `yaml:"avdName,omitempty"`
	DeviceProfile string        `yaml:"deviceProfile,omitempty"`
	BootTimeout   time.Duration `yaml:"bootTimeout,omitempty"`
	ShutdownGrace time.Duration `yaml:"shutdownGrace,omitempty"` // Applies to an emulator that failed to boot
}

// SystemImage returns the sdkmanager package id of the emulator image.
func (a AndroidConfig) SystemImage() string {
	return "system-images;android-" + strconv.Itoa(a.APILevel) + ";" + a.ImageTag + ";" + a.ABI
}

// IOSConfig controls simulator selection.
type IOSConfig struct {
	DevicePrefix string `yaml:"devicePrefix,omitempty"` // Preferred simulator name prefix (default: iPhone)
}
