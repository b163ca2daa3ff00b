package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"uirunner/internal/config"
	"uirunner/internal/process"
	"uirunner/pkg/logging"
)

const driverSubsystem = "Driver"

// Manager installs, starts and stops the Appium server.
type Manager struct {
	runner process.Runner
	cfg    config.AppiumConfig
	client *http.Client

	mu        sync.Mutex
	installed bool
}

// NewManager creates a manager for the given Appium settings.
func NewManager(runner process.Runner, cfg config.AppiumConfig) *Manager {
	return &Manager{
		runner: runner,
		cfg:    cfg,
		client: &http.Client{Timeout: 2 * time.Second},
	}
}

// Install ensures the appium CLI is available. It is safe to call repeatedly.
func (m *Manager) Install(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.installed {
		return nil
	}

	res, err := m.runner.Run(ctx, process.Command{Name: "appium", Args: []string{"--version"}})
	switch {
	case err == nil && res.ExitCode == 0:
		logging.Debug(driverSubsystem, "Found appium %s", strings.TrimSpace(res.Stdout))
		m.installed = true
		return nil
	case err != nil && !process.IsNotFound(err):
		return fmt.Errorf("failed to check for appium: %w", err)
	}

	logging.Info(driverSubsystem, "Installing appium with npm")
	res, err = m.runner.Run(ctx, process.Command{Name: "npm", Args: []string{"install", "-g", "appium"}})
	if err != nil {
		return fmt.Errorf("failed to install appium: %w", err)
	}
	// npm reports deprecations on stderr; only the exit code is meaningful.
	if res.ExitCode != 0 {
		return &InstallError{Component: "appium", ExitCode: res.ExitCode, Output: res.Diagnostics()}
	}

	m.installed = true
	return nil
}

// EnsurePlatformDriver installs the named Appium driver unless it is already
// installed.
func (m *Manager) EnsurePlatformDriver(ctx context.Context, name string) error {
	res, err := m.runner.Run(ctx, process.Command{
		Name: "appium",
		Args: []string{"driver", "list", "--installed", "--json"},
	})
	if err != nil {
		return fmt.Errorf("failed to list appium drivers: %w", err)
	}
	if res.ExitCode == 0 {
		var installed map[string]json.RawMessage
		if jsonErr := json.Unmarshal([]byte(res.Stdout), &installed); jsonErr == nil {
			if _, ok := installed[name]; ok {
				logging.Debug(driverSubsystem, "Appium driver %s already installed", name)
				return nil
			}
		} else {
			logging.Debug(driverSubsystem, "Could not parse appium driver list: %v", jsonErr)
		}
	}

	logging.Info(driverSubsystem, "Installing appium driver %s", name)
	res, err = m.runner.Run(ctx, process.Command{
		Name: "appium",
		Args: []string{"driver", "install", name},
	})
	if err != nil {
		return fmt.Errorf("failed to install appium driver %s: %w", name, err)
	}
	if res.ExitCode != 0 {
		if strings.Contains(strings.ToLower(res.Stdout+res.Stderr), "already installed") {
			return nil
		}
		return &InstallError{Component: "appium driver " + name, ExitCode: res.ExitCode, Output: res.Diagnostics()}
	}
	return nil
}

// URL is the base address the server listens on.
func (m *Manager) URL() string {
	return "http://" + net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
}

// Start launches the Appium server with its log written into workingDir and
// waits until it is ready to accept sessions.
func (m *Manager) Start(ctx context.Context, workingDir string) (*Session, error) {
	m.mu.Lock()
	installed := m.installed
	m.mu.Unlock()
	if !installed {
		return nil, ErrNotInstalled
	}

	logPath := filepath.Join(workingDir, "appium.log")
	proc, err := m.runner.Start(ctx, process.Command{
		Name: "appium",
		Args: []string{
			"--address", m.cfg.Host,
			"--port", strconv.Itoa(m.cfg.Port),
			"--log", logPath,
			"--log-no-colors",
		},
		Dir:       workingDir,
		Subsystem: "appium",
	})
	if err != nil {
		return nil, &StartError{Reason: "could not launch process", Err: err}
	}

	session := &Session{
		URL:   m.URL(),
		proc:  proc,
		grace: m.cfg.ShutdownGrace,
	}
	logging.Info(driverSubsystem, "Started appium (PID: %d), waiting for %s", proc.Pid(), session.URL)

	if err := m.waitReady(ctx, proc); err != nil {
		_ = session.Release()
		return nil, err
	}

	logging.Info(driverSubsystem, "Appium is ready at %s", session.URL)
	return session, nil
}

func (m *Manager) waitReady(ctx context.Context, proc process.Process) error {
	statusURL := m.URL() + "/status"

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		select {
		case <-proc.Done():
			_, stderr := proc.Output()
			return struct{}{}, backoff.Permanent(&StartError{
				Reason: "process exited during startup",
				Output: strings.TrimSpace(stderr),
				Err:    proc.ExitErr(),
			})
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		resp, err := m.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return struct{}{}, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxElapsedTime(m.cfg.StartupTimeout))
	if err == nil {
		return nil
	}

	var startErr *StartError
	if errors.As(err, &startErr) {
		return err
	}
	return &StartError{Reason: fmt.Sprintf("not ready after %s", m.cfg.StartupTimeout), Err: err}
}
