package device

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"

	"uirunner/internal/platform"
	"uirunner/pkg/logging"
)

const iosRuntimePrefix = "com.apple.CoreSimulator.SimRuntime.iOS-"

type simctlList struct {
	Devices map[string][]simDevice `json:"devices"`
}

type simDevice struct {
	UDID  string `json:"udid"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type simCandidate struct {
	device  simDevice
	version *version.Version
}

func (p *Provisioner) provisionIOS(ctx context.Context) (Identity, error) {
	if err := p.drivers.EnsurePlatformDriver(ctx, p.appium.IOSDriver); err != nil {
		return Identity{}, fmt.Errorf("failed to install appium driver %s: %w", p.appium.IOSDriver, err)
	}

	// Start from a clean state with exactly one simulator booted.
	logging.Info(deviceSubsystem, "Shutting down running simulators")
	if _, err := p.run(ctx, "xcrun", "simctl", "shutdown", "all"); err != nil {
		return Identity{}, err
	}

	res, err := p.run(ctx, "xcrun", "simctl", "list", "devices", "available", "--json")
	if err != nil {
		return Identity{}, err
	}
	var list simctlList
	if err := json.Unmarshal([]byte(res.Stdout), &list); err != nil {
		return Identity{}, fmt.Errorf("failed to parse simctl device list: %w", err)
	}

	sim, ok := selectSimulator(list, p.ios.DevicePrefix)
	if !ok {
		return Identity{}, &DeviceNotFoundError{Platform: platform.IOS, Reason: "no available iOS simulator"}
	}

	logging.Info(deviceSubsystem, "Booting simulator %s (%s)", sim.device.Name, sim.device.UDID)
	if _, err := p.run(ctx, "xcrun", "simctl", "bootstatus", sim.device.UDID, "-b"); err != nil {
		return Identity{}, &DeviceNotFoundError{Platform: platform.IOS, Reason: "simulator failed to boot", Err: err}
	}

	return Identity{
		Name:      sim.device.Name,
		ID:        sim.device.UDID,
		OSVersion: sim.version.Original(),
	}, nil
}

// selectSimulator picks a device from the newest iOS runtime, preferring the
// first one whose name starts with prefix.
func selectSimulator(list simctlList, prefix string) (simCandidate, bool) {
	var runtimes []simCandidate
	for runtime, devices := range list.Devices {
		if !strings.HasPrefix(runtime, iosRuntimePrefix) || len(devices) == 0 {
			continue
		}
		v, err := version.NewVersion(strings.ReplaceAll(strings.TrimPrefix(runtime, iosRuntimePrefix), "-", "."))
		if err != nil {
			logging.Debug(deviceSubsystem, "Skipping runtime %s: %v", runtime, err)
			continue
		}
		runtimes = append(runtimes, simCandidate{device: pickDevice(devices, prefix), version: v})
	}
	if len(runtimes) == 0 {
		return simCandidate{}, false
	}

	sort.Slice(runtimes, func(i, j int) bool {
		return runtimes[i].version.GreaterThan(runtimes[j].version)
	})
	return runtimes[0], true
}

func pickDevice(devices []simDevice, prefix string) simDevice {
	if prefix != "" {
		for _, d := range devices {
			if strings.HasPrefix(d.Name, prefix) {
				return d
			}
		}
	}
	return devices[0]
}
