package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"uirunner/internal/config"
	"uirunner/internal/platform"
	"uirunner/internal/process"
	"uirunner/pkg/logging"
)

const deviceSubsystem = "Device"

// Identity addresses the provisioned device for a run.
type Identity struct {
	Name      string
	ID        string
	OSVersion string
}

func (i Identity) String() string {
	return fmt.Sprintf("%s (%s, OS %s)", i.Name, i.ID, i.OSVersion)
}

// DriverInstaller installs the Appium driver for a platform.
type DriverInstaller interface {
	EnsurePlatformDriver(ctx context.Context, name string) error
}

// Provisioner produces a running device for a platform.
type Provisioner struct {
	runner  process.Runner
	drivers DriverInstaller
	appium  config.AppiumConfig
	android config.AndroidConfig
	ios     config.IOSConfig

	// bootPoll is the initial interval between emulator boot checks.
	bootPoll time.Duration
}

// NewProvisioner creates a provisioner using the tool settings in cfg.
func NewProvisioner(runner process.Runner, drivers DriverInstaller, cfg config.Config) *Provisioner {
	return &Provisioner{
		runner:   runner,
		drivers:  drivers,
		appium:   cfg.Appium,
		android:  cfg.Android,
		ios:      cfg.IOS,
		bootPoll: 2 * time.Second,
	}
}

// Provision makes sure a device for plat is running and returns its identity.
// The identity always has a non-empty name and id.
func (p *Provisioner) Provision(ctx context.Context, plat platform.Platform) (Identity, error) {
	var (
		id  Identity
		err error
	)
	switch plat {
	case platform.Android:
		id, err = p.provisionAndroid(ctx)
	case platform.IOS:
		id, err = p.provisionIOS(ctx)
	default:
		return Identity{}, &platform.UnsupportedError{Value: string(plat)}
	}
	if err != nil {
		return Identity{}, err
	}

	if strings.TrimSpace(id.Name) == "" || strings.TrimSpace(id.ID) == "" {
		return Identity{}, &DeviceNotFoundError{Platform: plat, Reason: "device reported an incomplete identity"}
	}

	logging.Info(deviceSubsystem, "Using %s device %s", plat, id)
	return id, nil
}

// run executes an SDK tool and fails on a non-zero exit code. SDK tools
// print progress and warnings on stderr, so stderr alone is not a failure.
func (p *Provisioner) run(ctx context.Context, name string, args ...string) (*process.Result, error) {
	cmd := process.Command{Name: name, Args: args}
	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	if res.ExitCode != 0 {
		return res, &CommandError{Command: cmd.String(), ExitCode: res.ExitCode, Output: res.Diagnostics()}
	}
	return res, nil
}
