package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v5"

	"uirunner/internal/platform"
	"uirunner/internal/process"
	"uirunner/pkg/logging"
)

func (p *Provisioner) provisionAndroid(ctx context.Context) (Identity, error) {
	if err := p.drivers.EnsurePlatformDriver(ctx, p.appium.AndroidDriver); err != nil {
		return Identity{}, fmt.Errorf("failed to install appium driver %s: %w", p.appium.AndroidDriver, err)
	}

	serials, err := p.connectedDevices(ctx)
	if err != nil {
		return Identity{}, err
	}

	if len(serials) == 0 {
		logging.Info(deviceSubsystem, "No Android device connected, starting emulator %s", p.android.AVDName)
		if err := p.ensureSystemImage(ctx); err != nil {
			return Identity{}, err
		}
		if err := p.ensureAVD(ctx); err != nil {
			return Identity{}, err
		}
		if serials, err = p.startEmulator(ctx); err != nil {
			return Identity{}, err
		}
	} else {
		logging.Debug(deviceSubsystem, "Connected Android devices: %s", strings.Join(serials, ", "))
	}

	return p.androidIdentity(ctx, serials[0])
}

// connectedDevices returns the serials adb reports in the "device" state.
// Offline and unauthorized devices are skipped.
func (p *Provisioner) connectedDevices(ctx context.Context) ([]string, error) {
	res, err := p.run(ctx, "adb", "devices")
	if err != nil {
		return nil, err
	}
	return parseADBDevices(res.Stdout), nil
}

func parseADBDevices(output string) []string {
	var serials []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == "device" {
			serials = append(serials, fields[0])
		}
	}
	return serials
}

func (p *Provisioner) ensureSystemImage(ctx context.Context) error {
	image := p.android.SystemImage()
	res, err := p.run(ctx, "sdkmanager", "--list_installed")
	if err != nil {
		return err
	}
	if strings.Contains(res.Stdout, image) {
		logging.Debug(deviceSubsystem, "System image %s already installed", image)
		return nil
	}

	logging.Info(deviceSubsystem, "Installing system image %s", image)
	_, err = p.run(ctx, "sdkmanager", "--install", image)
	return err
}

func (p *Provisioner) ensureAVD(ctx context.Context) error {
	res, err := p.run(ctx, "avdmanager", "list", "avd", "-c")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) == p.android.AVDName {
			logging.Debug(deviceSubsystem, "AVD %s already exists", p.android.AVDName)
			return nil
		}
	}

	logging.Info(deviceSubsystem, "Creating AVD %s", p.android.AVDName)
	_, err = p.run(ctx, "avdmanager", "create", "avd",
		"-n", p.android.AVDName,
		"-k", p.android.SystemImage(),
		"-d", p.android.DeviceProfile,
	)
	return err
}

// startEmulator launches the AVD and waits until adb reports it booted.
func (p *Provisioner) startEmulator(ctx context.Context) ([]string, error) {
	emulator, err := p.runner.Start(ctx, process.Command{
		Name:      "emulator",
		Args:      []string{"-avd", p.android.AVDName, "-no-snapshot-save", "-no-boot-anim"},
		Subsystem: "emulator",
	})
	if err != nil {
		return nil, &DeviceNotFoundError{Platform: platform.Android, Reason: "could not start emulator", Err: err}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.bootPoll
	policy.MaxInterval = 5 * p.bootPoll

	serials, err := backoff.Retry(ctx, func() ([]string, error) {
		select {
		case <-emulator.Done():
			_, stderr := emulator.Output()
			return nil, backoff.Permanent(fmt.Errorf("emulator exited: %v: %s", emulator.ExitErr(), strings.TrimSpace(stderr)))
		default:
		}

		serials, err := p.connectedDevices(ctx)
		if err != nil {
			return nil, err
		}
		if len(serials) == 0 {
			return nil, errors.New("emulator not visible to adb yet")
		}
		res, err := p.run(ctx, "adb", "-s", serials[0], "shell", "getprop", "sys.boot_completed")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(res.Stdout) != "1" {
			return nil, fmt.Errorf("%s has not finished booting", serials[0])
		}
		return serials, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxElapsedTime(p.android.BootTimeout))
	if err != nil {
		_ = emulator.Terminate(p.android.ShutdownGrace)
		return nil, &DeviceNotFoundError{
			Platform: platform.Android,
			Reason:   fmt.Sprintf("emulator %s did not boot within %s", p.android.AVDName, p.android.BootTimeout),
			Err:      err,
		}
	}

	logging.Info(deviceSubsystem, "Emulator %s booted as %s", p.android.AVDName, serials[0])
	return serials, nil
}

func (p *Provisioner) androidIdentity(ctx context.Context, serial string) (Identity, error) {
	model, err := p.getprop(ctx, serial, "ro.product.model")
	if err != nil {
		return Identity{}, err
	}
	sdk, err := p.getprop(ctx, serial, "ro.build.version.sdk")
	if err != nil {
		return Identity{}, err
	}
	if model == "" {
		model = serial
	}
	return Identity{Name: model, ID: serial, OSVersion: sdk}, nil
}

func (p *Provisioner) getprop(ctx context.Context, serial, prop string) (string, error) {
	res, err := p.run(ctx, "adb", "-s", serial, "shell", "getprop", prop)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}
