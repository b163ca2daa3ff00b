package config

import "time"

const (
	// DefaultWorkspaceDir is the scratch directory created under the current directory.
	DefaultWorkspaceDir = ".uitest"

	// DefaultBuildConfiguration is the build configuration used when none is given.
	DefaultBuildConfiguration = "Release"

	// DefaultAVDName is the name of the emulator image uirunner creates when no
	// Android device is connected.
	DefaultAVDName = "uitest_android_emulator"

	// DefaultAppiumPort is the port Appium listens on by default.
	DefaultAppiumPort = 4723
)

// GetDefaultConfig returns the default tool settings.
func GetDefaultConfig() Config {
	return Config{
		Workspace: WorkspaceConfig{
			Dir: DefaultWorkspaceDir,
		},
		Build: BuildConfig{
			Dotnet:               "dotnet",
			DefaultConfiguration: DefaultBuildConfiguration,
			IOSRuntimeIdentifier: "iossimulator-x64",
			TestLogger:           "trx",
		},
		Appium: AppiumConfig{
			Host:           "127.0.0.1",
			Port:           DefaultAppiumPort,
			StartupTimeout: 60 * time.Second,
			ShutdownGrace:  10 * time.Second,
			AndroidDriver:  "uiautomator2",
			IOSDriver:      "xcuitest",
		},
		Android: AndroidConfig{
			APILevel:      30,
			ABI:           "x86_64",
			ImageTag:      "google_apis",
			AVDName:       DefaultAVDName,
			DeviceProfile: "pixel",
			BootTimeout:   5 * time.Minute,
			ShutdownGrace: 10 * time.Second,
		},
		IOS: IOSConfig{
			DevicePrefix: "iPhone",
		},
	}
}
