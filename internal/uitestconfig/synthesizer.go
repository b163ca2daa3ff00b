package uitestconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"uirunner/internal/device"
	"uirunner/internal/platform"
	"uirunner/pkg/logging"
)

const configSubsystem = "Config"

// Provisioner produces the device a run targets.
type Provisioner interface {
	Provision(ctx context.Context, plat platform.Platform) (device.Identity, error)
}

// Options controls where synthesized configurations point and echo to.
type Options struct {
	// ScreenshotsDir is used when the base leaves screenshotsPath empty.
	ScreenshotsDir string
	// Output receives the serialized configuration. Nil disables the echo.
	Output io.Writer
}

// Synthesizer builds and persists run configurations.
type Synthesizer struct {
	provisioner Provisioner
	opts        Options
}

// NewSynthesizer creates a synthesizer provisioning devices with p.
func NewSynthesizer(p Provisioner, opts Options) *Synthesizer {
	return &Synthesizer{provisioner: p, opts: opts}
}

// Draft is a configuration with everything but the device fields resolved.
type Draft struct {
	Config          *TestConfiguration
	Platform        platform.Platform
	UITestOutputDir string
	// Source is the file the base was read from, empty for defaults.
	Source string
}

// Synthesize runs Prepare and Finalize back to back.
func (s *Synthesizer) Synthesize(ctx context.Context, plat platform.Platform, appOutputDir, uiTestOutputDir, overridePath string) (*TestConfiguration, error) {
	draft, err := s.Prepare(plat, appOutputDir, uiTestOutputDir, overridePath)
	if err != nil {
		return nil, err
	}
	return s.Finalize(ctx, draft)
}

// Prepare locates the app artifact, loads the base configuration and fills
// in every field that does not depend on the device.
func (s *Synthesizer) Prepare(plat platform.Platform, appOutputDir, uiTestOutputDir, overridePath string) (*Draft, error) {
	if err := plat.Validate(); err != nil {
		return nil, err
	}

	appPath, err := FindAppArtifact(plat, appOutputDir)
	if err != nil {
		return nil, err
	}

	cfg, source, err := LoadBase(uiTestOutputDir, overridePath)
	if err != nil {
		return nil, err
	}
	if source != "" {
		logging.Info(configSubsystem, "Using base configuration %s", source)
	} else {
		logging.Info(configSubsystem, "No base configuration found, using defaults")
	}

	if cfg.Capabilities == nil {
		cfg.Capabilities = map[string]string{}
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]string{}
	}
	cfg.Platform = plat
	cfg.AppPath = appPath
	if cfg.ScreenshotsPath == "" {
		cfg.ScreenshotsPath = s.opts.ScreenshotsDir
	}

	return &Draft{Config: cfg, Platform: plat, UITestOutputDir: uiTestOutputDir, Source: source}, nil
}

// Finalize provisions the device, records its identity and writes the
// configuration to the test output directory.
func (s *Synthesizer) Finalize(ctx context.Context, d *Draft) (*TestConfiguration, error) {
	id, err := s.provisioner.Provision(ctx, d.Platform)
	if err != nil {
		return nil, fmt.Errorf("failed to provision %s device: %w", d.Platform, err)
	}

	cfg := d.Config
	cfg.DeviceName = id.Name
	cfg.UDID = id.ID
	cfg.OSVersion = id.OSVersion

	data, err := cfg.Indented()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize configuration: %w", err)
	}

	path := filepath.Join(d.UITestOutputDir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info(configSubsystem, "Wrote %s", path)

	if s.opts.Output != nil {
		if _, err := s.opts.Output.Write(data); err != nil {
			logging.Warn(configSubsystem, "Failed to echo configuration: %v", err)
		}
	}
	return cfg, nil
}

// LoadBase reads the base configuration. An explicit override path must
// exist; otherwise a uitest.json in uiTestOutputDir is used when present.
// The returned source is empty when defaults were used.
func LoadBase(uiTestOutputDir, overridePath string) (*TestConfiguration, string, error) {
	if overridePath != "" {
		cfg, err := loadFile(overridePath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", &NotFoundError{Path: overridePath}
		}
		if err != nil {
			return nil, "", err
		}
		return cfg, overridePath, nil
	}

	discovered := filepath.Join(uiTestOutputDir, FileName)
	cfg, err := loadFile(discovered)
	if errors.Is(err, fs.ErrNotExist) {
		return &TestConfiguration{}, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, discovered, nil
}

func loadFile(path string) (*TestConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}
