package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"uirunner/pkg/logging"
)

const processSubsystem = "Process"

// execCommand is a variable to allow mocking in tests
var execCommand = exec.Command

// DefaultWaitDelay bounds how long output is still collected after a tool
// has exited. Children that inherit the tool's stdout would otherwise keep
// the run open for their whole lifetime.
const DefaultWaitDelay = 5 * time.Second

// ExecRunner implements Runner on top of os/exec.
type ExecRunner struct {
	// OutputLevel is the log level streamed tool output is emitted at.
	OutputLevel logging.LogLevel
	// WaitDelay is passed to exec.Cmd.WaitDelay. Zero means DefaultWaitDelay.
	WaitDelay time.Duration
}

// NewExecRunner creates a runner that streams tool output at debug level.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{OutputLevel: logging.LevelDebug, WaitDelay: DefaultWaitDelay}
}

// LookPath resolves name through PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &NotFoundError{Name: name, Err: err}
	}
	return path, nil
}

// Run executes cmd and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		logging.Debug(processSubsystem, "Skipping %s: %v", cmd.Name, err)
		return nil, err
	}

	c := r.command(cmd)
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	c.Stdout = stdoutW
	c.Stderr = stderrW

	logging.Debug(processSubsystem, "Running: %s", cmd)
	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, startError(cmd, err)
	}

	var stdout, stderr bytes.Buffer
	outLog := logging.NewWriter(cmd.subsystem(), r.OutputLevel)
	errLog := logging.NewWriter(cmd.subsystem(), r.OutputLevel)
	defer outLog.Close()
	defer errLog.Close()

	var g errgroup.Group
	g.Go(func() error { return drain(stdoutR, &stdout, outLog) })
	g.Go(func() error { return drain(stderrR, &stderr, errLog) })

	// Wait returns once the copies into the pipes finish, or WaitDelay after
	// the process exit when a child still holds the output open.
	waitErr := c.Wait()
	stdoutW.Close()
	stderrW.Close()
	drainErr := g.Wait()

	result := &Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case errors.Is(waitErr, exec.ErrWaitDelay):
			logging.Warn(processSubsystem, "%s exited but its output stayed open, stopped reading after %s", cmd.Name, c.WaitDelay)
		default:
			return nil, fmt.Errorf("failed to execute %s: %w", cmd.Name, waitErr)
		}
	}
	if drainErr != nil {
		return result, fmt.Errorf("failed to read output of %s: %w", cmd.Name, drainErr)
	}

	logging.Debug(processSubsystem, "%s exited with code %d after %s", cmd.Name, result.ExitCode, result.Duration.Round(time.Millisecond))
	return result, nil
}

// Start launches cmd in its own process group without waiting for it.
func (r *ExecRunner) Start(ctx context.Context, cmd Command) (Process, error) {
	if err := ctx.Err(); err != nil {
		logging.Debug(processSubsystem, "Skipping %s: %v", cmd.Name, err)
		return nil, err
	}

	c := r.command(cmd)
	configureProcAttr(c)

	h := &handle{
		cmd:    c,
		done:   make(chan struct{}),
		name:   cmd.Name,
		outLog: logging.NewWriter(cmd.subsystem(), r.OutputLevel),
		errLog: logging.NewWriter(cmd.subsystem(), r.OutputLevel),
	}
	c.Stdout = io.MultiWriter(&h.stdout, h.outLog)
	c.Stderr = io.MultiWriter(&h.stderr, h.errLog)

	logging.Debug(processSubsystem, "Starting: %s", cmd)
	if err := c.Start(); err != nil {
		return nil, startError(cmd, err)
	}

	go h.wait()
	logging.Debug(processSubsystem, "Started %s (PID: %d)", cmd.Name, c.Process.Pid)
	return h, nil
}

func (r *ExecRunner) command(cmd Command) *exec.Cmd {
	c := execCommand(cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = r.WaitDelay
	if c.WaitDelay <= 0 {
		c.WaitDelay = DefaultWaitDelay
	}
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}
	return c
}

func startError(cmd Command, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return &NotFoundError{Name: cmd.Name, Err: err}
	}
	return fmt.Errorf("failed to start %s: %w", cmd.Name, err)
}

func drain(r io.Reader, capture *bytes.Buffer, sink io.Writer) error {
	_, err := io.Copy(io.MultiWriter(capture, sink), r)
	return err
}

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// handle is the Process returned by ExecRunner.Start.
type handle struct {
	cmd    *exec.Cmd
	name   string
	stdout syncBuffer
	stderr syncBuffer
	outLog io.WriteCloser
	errLog io.WriteCloser

	done    chan struct{}
	waitErr error
}

func (h *handle) wait() {
	h.waitErr = h.cmd.Wait()
	h.outLog.Close()
	h.errLog.Close()
	close(h.done)
}

func (h *handle) Pid() int {
	return h.cmd.Process.Pid
}

func (h *handle) Done() <-chan struct{} {
	return h.done
}

func (h *handle) ExitErr() error {
	select {
	case <-h.done:
		return h.waitErr
	default:
		return nil
	}
}

func (h *handle) Output() (string, string) {
	return h.stdout.String(), h.stderr.String()
}

func (h *handle) Terminate(grace time.Duration) error {
	select {
	case <-h.done:
		return nil
	default:
	}

	pid := h.Pid()
	logging.Debug(processSubsystem, "Stopping %s (PID: %d)", h.name, pid)
	if err := terminateGroup(h.cmd, false); err != nil {
		logging.Debug(processSubsystem, "Graceful stop of %s failed: %v", h.name, err)
	}

	select {
	case <-h.done:
		return nil
	case <-time.After(grace):
		logging.Warn(processSubsystem, "%s did not exit within %s, killing process group %d", h.name, grace, pid)
		if err := terminateGroup(h.cmd, true); err != nil {
			return err
		}
		<-h.done
		return nil
	}
}
