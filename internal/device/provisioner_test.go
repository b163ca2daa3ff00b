package device

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uirunner/internal/config"
	"uirunner/internal/platform"
	"uirunner/internal/process"
	"uirunner/internal/process/processtest"
)

type fakeDrivers struct {
	installed []string
	err       error
}

func (f *fakeDrivers) EnsurePlatformDriver(_ context.Context, name string) error {
	f.installed = append(f.installed, name)
	return f.err
}

func newTestProvisioner(runner process.Runner, drivers DriverInstaller) *Provisioner {
	cfg := config.GetDefaultConfig()
	cfg.Android.BootTimeout = 2 * time.Second
	cfg.Android.ShutdownGrace = 10 * time.Millisecond
	cfg.Appium.ShutdownGrace = time.Hour
	p := NewProvisioner(runner, drivers, cfg)
	p.bootPoll = 5 * time.Millisecond
	return p
}

const adbHeader = "List of devices attached\n"

func TestProvision_UnsupportedPlatform(t *testing.T) {
	runner := processtest.NewRunner()
	p := newTestProvisioner(runner, &fakeDrivers{})

	_, err := p.Provision(context.Background(), platform.Platform("Windows"))
	require.Error(t, err)
	assert.True(t, platform.IsUnsupported(err))
	assert.Empty(t, runner.Calls())
}

func TestProvision_AndroidConnectedDevice(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("adb devices", adbHeader+"R58M123\tunauthorized\nemulator-5554\tdevice\n\n").
		OnOutput("adb -s emulator-5554 shell getprop ro.product.model", "sdk_gphone64_x86_64\n").
		OnOutput("adb -s emulator-5554 shell getprop ro.build.version.sdk", "30\n")
	drivers := &fakeDrivers{}
	p := newTestProvisioner(runner, drivers)

	id, err := p.Provision(context.Background(), platform.Android)
	require.NoError(t, err)

	assert.Equal(t, Identity{Name: "sdk_gphone64_x86_64", ID: "emulator-5554", OSVersion: "30"}, id)
	assert.Equal(t, []string{"uiautomator2"}, drivers.installed)
	assert.Empty(t, runner.Started())
	assert.False(t, runner.Ran("sdkmanager"))
	assert.False(t, runner.Ran("avdmanager"))
}

func TestProvision_AndroidModelFallsBackToSerial(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("adb devices", adbHeader+"0123456789ABCDEF\tdevice\n").
		OnOutput("adb -s 0123456789ABCDEF shell getprop ro.build.version.sdk", "33\n")
	p := newTestProvisioner(runner, &fakeDrivers{})

	id, err := p.Provision(context.Background(), platform.Android)
	require.NoError(t, err)
	assert.Equal(t, "0123456789ABCDEF", id.Name)
	assert.Equal(t, "0123456789ABCDEF", id.ID)
	assert.Equal(t, "33", id.OSVersion)
}

func TestProvision_AndroidStartsEmulator(t *testing.T) {
	var adbCalls atomic.Int32
	runner := processtest.NewRunner().
		On("adb devices", func(process.Command) (*process.Result, error) {
			if adbCalls.Add(1) < 3 {
				return &process.Result{Stdout: adbHeader}, nil
			}
			return &process.Result{Stdout: adbHeader + "emulator-5554\tdevice\n"}, nil
		}).
		OnOutput("adb -s emulator-5554 shell getprop sys.boot_completed", "1\n").
		OnOutput("adb -s emulator-5554 shell getprop ro.product.model", "sdk_gphone_x86_64\n").
		OnOutput("adb -s emulator-5554 shell getprop ro.build.version.sdk", "30\n").
		OnOutput("sdkmanager --list_installed", "Installed packages:\n  platform-tools | 34.0.5\n").
		OnOutput("avdmanager list avd -c", "Pixel_7_API_34\n")
	emulator := processtest.NewProcess()
	runner.StartFunc = func(process.Command) (process.Process, error) { return emulator, nil }
	p := newTestProvisioner(runner, &fakeDrivers{})

	id, err := p.Provision(context.Background(), platform.Android)
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554", id.ID)

	assert.True(t, runner.Ran("sdkmanager --install system-images;android-30;google_apis;x86_64"))
	assert.True(t, runner.Ran("avdmanager create avd -n uitest_android_emulator -k system-images;android-30;google_apis;x86_64 -d pixel"))
	assert.Equal(t, []string{"emulator -avd uitest_android_emulator -no-snapshot-save -no-boot-anim"}, runner.Started())
	assert.Zero(t, emulator.Terminations(), "booted emulator stays running")
}

func TestProvision_AndroidReusesImageAndAVD(t *testing.T) {
	var adbCalls atomic.Int32
	runner := processtest.NewRunner().
		On("adb devices", func(process.Command) (*process.Result, error) {
			if adbCalls.Add(1) == 1 {
				return &process.Result{Stdout: adbHeader}, nil
			}
			return &process.Result{Stdout: adbHeader + "emulator-5554\tdevice\n"}, nil
		}).
		OnOutput("adb -s emulator-5554 shell getprop", "1\n").
		OnOutput("sdkmanager --list_installed", "  system-images;android-30;google_apis;x86_64 | 10 | Google APIs\n").
		OnOutput("avdmanager list avd -c", "Pixel_7_API_34\nuitest_android_emulator\n")
	p := newTestProvisioner(runner, &fakeDrivers{})

	_, err := p.Provision(context.Background(), platform.Android)
	require.NoError(t, err)
	assert.False(t, runner.Ran("sdkmanager --install"))
	assert.False(t, runner.Ran("avdmanager create"))
}

func TestProvision_AndroidEmulatorNeverBoots(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("adb devices", adbHeader+"emulator-5554\toffline\n").
		OnOutput("sdkmanager --list_installed", "system-images;android-30;google_apis;x86_64\n").
		OnOutput("avdmanager list avd -c", "uitest_android_emulator\n")
	emulator := processtest.NewProcess()
	runner.StartFunc = func(process.Command) (process.Process, error) { return emulator, nil }
	p := newTestProvisioner(runner, &fakeDrivers{})
	p.android.BootTimeout = 50 * time.Millisecond

	_, err := p.Provision(context.Background(), platform.Android)
	require.Error(t, err)
	assert.True(t, IsDeviceNotFound(err))
	assert.Contains(t, err.Error(), "did not boot within")
	assert.Equal(t, 1, emulator.Terminations())
	assert.Equal(t, p.android.ShutdownGrace, emulator.LastGrace())
}

func TestProvision_AndroidEmulatorExits(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("adb devices", adbHeader).
		OnOutput("sdkmanager --list_installed", "system-images;android-30;google_apis;x86_64\n").
		OnOutput("avdmanager list avd -c", "uitest_android_emulator\n")
	runner.StartFunc = func(process.Command) (process.Process, error) {
		return processtest.ExitedProcess(errors.New("exit status 1"), "PANIC: Missing emulator engine program"), nil
	}
	p := newTestProvisioner(runner, &fakeDrivers{})

	_, err := p.Provision(context.Background(), platform.Android)
	require.Error(t, err)
	assert.True(t, IsDeviceNotFound(err))
	assert.Contains(t, err.Error(), "Missing emulator engine program")
}

func TestProvision_AndroidToolFailure(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("adb devices", adbHeader).
		OnFail("sdkmanager --list_installed", 1, "Error: JAVA_HOME is not set")
	p := newTestProvisioner(runner, &fakeDrivers{})

	_, err := p.Provision(context.Background(), platform.Android)
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Output, "JAVA_HOME")
}

func TestProvision_DriverFailure(t *testing.T) {
	runner := processtest.NewRunner()
	p := newTestProvisioner(runner, &fakeDrivers{err: errors.New("registry unreachable")})

	_, err := p.Provision(context.Background(), platform.IOS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xcuitest")
	assert.Empty(t, runner.Calls())
}

const simctlDevices = `{
  "devices": {
    "com.apple.CoreSimulator.SimRuntime.watchOS-10-2": [
      {"udid": "W-1", "name": "Apple Watch Series 9 (45mm)", "state": "Shutdown"}
    ],
    "com.apple.CoreSimulator.SimRuntime.iOS-16-4": [
      {"udid": "A-1", "name": "iPhone 14", "state": "Shutdown"}
    ],
    "com.apple.CoreSimulator.SimRuntime.iOS-17-2": [
      {"udid": "B-1", "name": "iPad Pro (11-inch) (4th generation)", "state": "Shutdown"},
      {"udid": "B-2", "name": "iPhone 15", "state": "Shutdown"},
      {"udid": "B-3", "name": "iPhone 15 Pro", "state": "Shutdown"}
    ],
    "com.apple.CoreSimulator.SimRuntime.iOS-17-10": []
  }
}`

func TestProvision_IOS(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("xcrun simctl list devices available --json", simctlDevices)
	drivers := &fakeDrivers{}
	p := newTestProvisioner(runner, drivers)

	id, err := p.Provision(context.Background(), platform.IOS)
	require.NoError(t, err)

	assert.Equal(t, Identity{Name: "iPhone 15", ID: "B-2", OSVersion: "17.2"}, id)
	assert.Equal(t, []string{"xcuitest"}, drivers.installed)
	assert.Equal(t, []string{
		"xcrun simctl shutdown all",
		"xcrun simctl list devices available --json",
		"xcrun simctl bootstatus B-2 -b",
	}, runner.Calls())
}

func TestProvision_IOSNoSimulator(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("xcrun simctl list devices available --json", `{"devices": {"com.apple.CoreSimulator.SimRuntime.tvOS-17-2": [{"udid": "T", "name": "Apple TV"}]}}`)
	p := newTestProvisioner(runner, &fakeDrivers{})

	_, err := p.Provision(context.Background(), platform.IOS)
	require.Error(t, err)
	assert.True(t, IsDeviceNotFound(err))
	assert.False(t, runner.Ran("xcrun simctl bootstatus"))
}

func TestProvision_IOSBootFailure(t *testing.T) {
	runner := processtest.NewRunner().
		OnOutput("xcrun simctl list devices available --json", simctlDevices).
		OnFail("xcrun simctl bootstatus", 149, "Unable to boot device in current state")
	p := newTestProvisioner(runner, &fakeDrivers{})

	_, err := p.Provision(context.Background(), platform.IOS)
	require.Error(t, err)
	assert.True(t, IsDeviceNotFound(err))
	assert.Contains(t, err.Error(), "Unable to boot device")
}

func TestSelectSimulator(t *testing.T) {
	t.Run("falls back to first device without prefix match", func(t *testing.T) {
		list := simctlList{Devices: map[string][]simDevice{
			iosRuntimePrefix + "17-0": {{UDID: "P-1", Name: "iPad mini"}},
		}}
		sim, ok := selectSimulator(list, "iPhone")
		require.True(t, ok)
		assert.Equal(t, "P-1", sim.device.UDID)
	})

	t.Run("compares runtime versions numerically", func(t *testing.T) {
		list := simctlList{Devices: map[string][]simDevice{
			iosRuntimePrefix + "17-9":  {{UDID: "old", Name: "iPhone 15"}},
			iosRuntimePrefix + "17-10": {{UDID: "new", Name: "iPhone 15"}},
		}}
		sim, ok := selectSimulator(list, "iPhone")
		require.True(t, ok)
		assert.Equal(t, "new", sim.device.UDID)
		assert.Equal(t, "17.10", sim.version.Original())
	})
}

func TestParseADBDevices(t *testing.T) {
	out := "* daemon not running; starting now at tcp:5037\n* daemon started successfully\n" +
		adbHeader + "emulator-5554\tdevice\nemulator-5556\toffline\nR58M\tdevice product:x model:y\n"
	assert.Equal(t, []string{"emulator-5554", "R58M"}, parseADBDevices(out))
	assert.Empty(t, parseADBDevices(adbHeader))
}
