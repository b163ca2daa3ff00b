package uitestconfig

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uirunner/internal/device"
	"uirunner/internal/platform"
)

type fakeProvisioner struct {
	id    device.Identity
	err   error
	calls int
}

func (f *fakeProvisioner) Provision(_ context.Context, _ platform.Platform) (device.Identity, error) {
	f.calls++
	return f.id, f.err
}

type dirs struct {
	app, uitest, screenshots string
}

func newDirs(t *testing.T) dirs {
	root := t.TempDir()
	d := dirs{
		app:         filepath.Join(root, "bin", "device"),
		uitest:      filepath.Join(root, "bin", "uitest"),
		screenshots: filepath.Join(root, "Screenshots") + string(filepath.Separator),
	}
	require.NoError(t, os.MkdirAll(d.app, 0o755))
	require.NoError(t, os.MkdirAll(d.uitest, 0o755))
	return d
}

func readWritten(t *testing.T, dir string) *TestConfiguration {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	cfg, err := Parse(data)
	require.NoError(t, err)
	return cfg
}

func TestSynthesize_AndroidDefaults(t *testing.T) {
	d := newDirs(t)
	touch(t, filepath.Join(d.app, "com.example.app-Signed.apk"))

	prov := &fakeProvisioner{id: device.Identity{Name: "sdk_gphone64_x86_64", ID: "emulator-5554", OSVersion: "30"}}
	var echo bytes.Buffer
	s := NewSynthesizer(prov, Options{ScreenshotsDir: d.screenshots, Output: &echo})

	cfg, err := s.Synthesize(context.Background(), platform.Android, d.app, d.uitest, "")
	require.NoError(t, err)

	assert.Equal(t, platform.Android, cfg.Platform)
	assert.True(t, strings.HasSuffix(cfg.AppPath, "-Signed.apk"))
	assert.NotNil(t, cfg.Capabilities)
	assert.Empty(t, cfg.Capabilities)
	assert.NotNil(t, cfg.Settings)
	assert.Empty(t, cfg.Settings)
	assert.Equal(t, d.screenshots, cfg.ScreenshotsPath)
	assert.Equal(t, "emulator-5554", cfg.UDID)

	written := readWritten(t, d.uitest)
	assert.Equal(t, cfg, written)

	raw, err := os.ReadFile(filepath.Join(d.uitest, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"appPath\": ")
	assert.Contains(t, string(raw), `"capabilities": {}`)
	assert.Equal(t, string(raw), echo.String())
}

func TestSynthesize_IOSOverride(t *testing.T) {
	d := newDirs(t)
	bundle := filepath.Join(d.app, "iossimulator-x64", "Example.app")
	touch(t, filepath.Join(bundle, "Example"))

	override := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(override, []byte(`{
		// stale values from a checked-in file
		"platform": "Android",
		"appPath": "/old/app.apk",
		"deviceName": "Pixel 4",
		"udid": "emulator-5556",
		"screenshotsPath": "/custom/shots",
		"settings": {"retries": "2"},
		"environment": "staging",
	}`), 0o644))

	// A discovered file loses against the override.
	require.NoError(t, os.WriteFile(filepath.Join(d.uitest, FileName), []byte(`{"settings": {"retries": "9"}}`), 0o644))

	prov := &fakeProvisioner{id: device.Identity{Name: "iPhone 15", ID: "B-2", OSVersion: "17.2"}}
	s := NewSynthesizer(prov, Options{ScreenshotsDir: d.screenshots})

	_, err := s.Synthesize(context.Background(), platform.IOS, d.app, d.uitest, override)
	require.NoError(t, err)

	written := readWritten(t, d.uitest)
	assert.Equal(t, "2", written.Settings["retries"])
	assert.Equal(t, platform.IOS, written.Platform)
	assert.Equal(t, bundle, written.AppPath)
	assert.Equal(t, "iPhone 15", written.DeviceName)
	assert.Equal(t, "B-2", written.UDID)
	assert.Equal(t, "17.2", written.OSVersion)
	assert.Equal(t, "/custom/shots", written.ScreenshotsPath)
	assert.Equal(t, `"staging"`, string(written.Extra["environment"]))
}

func TestSynthesize_DiscoveredBase(t *testing.T) {
	d := newDirs(t)
	touch(t, filepath.Join(d.app, "app-Signed.apk"))
	require.NoError(t, os.WriteFile(filepath.Join(d.uitest, FileName),
		[]byte(`{"capabilities": {"appium:noReset": "true"}}`), 0o644))

	s := NewSynthesizer(&fakeProvisioner{id: device.Identity{Name: "Pixel", ID: "R58M", OSVersion: "34"}}, Options{})
	cfg, err := s.Synthesize(context.Background(), platform.Android, d.app, d.uitest, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"appium:noReset": "true"}, cfg.Capabilities)
}

func TestPrepare_UnsupportedPlatformBeforeIO(t *testing.T) {
	prov := &fakeProvisioner{}
	s := NewSynthesizer(prov, Options{})

	_, err := s.Prepare(platform.Platform("Windows"), "/does/not/exist", "/does/not/exist", "/missing.json")
	require.Error(t, err)
	assert.True(t, platform.IsUnsupported(err))
	assert.Zero(t, prov.calls)
}

func TestPrepare_MissingOverride(t *testing.T) {
	d := newDirs(t)
	touch(t, filepath.Join(d.app, "app-Signed.apk"))
	prov := &fakeProvisioner{}
	s := NewSynthesizer(prov, Options{})

	_, err := s.Prepare(platform.Android, d.app, d.uitest, filepath.Join(d.uitest, "nope.json"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Zero(t, prov.calls)
	assert.NoFileExists(t, filepath.Join(d.uitest, FileName))
}

func TestPrepare_MalformedBase(t *testing.T) {
	d := newDirs(t)
	touch(t, filepath.Join(d.app, "app-Signed.apk"))
	require.NoError(t, os.WriteFile(filepath.Join(d.uitest, FileName), []byte(`{"settings": `), 0o644))

	s := NewSynthesizer(&fakeProvisioner{}, Options{})
	_, err := s.Prepare(platform.Android, d.app, d.uitest, "")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, filepath.Join(d.uitest, FileName), parseErr.Path)
}

func TestFinalize_ProvisionFailure(t *testing.T) {
	d := newDirs(t)
	touch(t, filepath.Join(d.app, "app-Signed.apk"))
	prov := &fakeProvisioner{err: &device.DeviceNotFoundError{Platform: platform.Android, Reason: "emulator did not boot"}}
	s := NewSynthesizer(prov, Options{})

	draft, err := s.Prepare(platform.Android, d.app, d.uitest, "")
	require.NoError(t, err)

	_, err = s.Finalize(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, device.IsDeviceNotFound(err))
	assert.NoFileExists(t, filepath.Join(d.uitest, FileName))
}

func TestFinalize_WriteFailure(t *testing.T) {
	d := newDirs(t)
	touch(t, filepath.Join(d.app, "app-Signed.apk"))
	s := NewSynthesizer(&fakeProvisioner{id: device.Identity{Name: "Pixel", ID: "R58M"}}, Options{})

	draft, err := s.Prepare(platform.Android, d.app, d.uitest, "")
	require.NoError(t, err)
	draft.UITestOutputDir = filepath.Join(d.uitest, "missing")

	_, err = s.Finalize(context.Background(), draft)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
}
