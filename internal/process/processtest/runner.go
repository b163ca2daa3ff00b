// Package processtest provides a scripted process.Runner for tests.
package processtest

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"uirunner/internal/process"
)

// HandlerFunc produces the outcome of a scripted command.
type HandlerFunc func(cmd process.Command) (*process.Result, error)

type handler struct {
	prefix string
	fn     HandlerFunc
}

// Runner records every invocation and answers from scripted handlers.
// Commands without a matching handler succeed with empty output.
type Runner struct {
	mu       sync.Mutex
	handlers []handler
	calls    []process.Command
	started  []process.Command

	// Missing lists executables LookPath reports as absent.
	Missing map[string]bool
	// StartFunc, when set, produces the Process returned by Start.
	StartFunc func(cmd process.Command) (process.Process, error)
}

// NewRunner returns an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{Missing: map[string]bool{}}
}

// On registers fn for commands whose command line starts with prefix.
// Later registrations take precedence over earlier ones.
func (r *Runner) On(prefix string, fn HandlerFunc) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler{prefix: prefix, fn: fn})
	return r
}

// OnOutput scripts a successful command printing stdout.
func (r *Runner) OnOutput(prefix, stdout string) *Runner {
	return r.On(prefix, func(process.Command) (*process.Result, error) {
		return &process.Result{Stdout: stdout}, nil
	})
}

// OnFail scripts a command exiting with exitCode and writing stderr.
func (r *Runner) OnFail(prefix string, exitCode int, stderr string) *Runner {
	return r.On(prefix, func(process.Command) (*process.Result, error) {
		return &process.Result{ExitCode: exitCode, Stderr: stderr}, nil
	})
}

// OnMissing scripts a command whose executable cannot be found.
func (r *Runner) OnMissing(prefix string) *Runner {
	return r.On(prefix, func(cmd process.Command) (*process.Result, error) {
		return nil, &process.NotFoundError{Name: cmd.Name, Err: exec.ErrNotFound}
	})
}

// Run implements process.Runner.
func (r *Runner) Run(ctx context.Context, cmd process.Command) (*process.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	fn := r.match(cmd)
	r.mu.Unlock()

	if fn == nil {
		return &process.Result{}, nil
	}
	return fn(cmd)
}

// Start implements process.Runner.
func (r *Runner) Start(ctx context.Context, cmd process.Command) (process.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.started = append(r.started, cmd)
	startFunc := r.StartFunc
	r.mu.Unlock()

	if startFunc != nil {
		return startFunc(cmd)
	}
	return NewProcess(), nil
}

// LookPath implements process.Runner.
func (r *Runner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Missing[name] {
		return "", &process.NotFoundError{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/local/bin/" + name, nil
}

func (r *Runner) match(cmd process.Command) HandlerFunc {
	line := cmd.String()
	for i := len(r.handlers) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, r.handlers[i].prefix) {
			return r.handlers[i].fn
		}
	}
	return nil
}

// Calls returns the command lines passed to Run, in order.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Commands returns the commands passed to Run, in order.
func (r *Runner) Commands() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]process.Command(nil), r.calls...)
}

// Started returns the command lines passed to Start, in order.
func (r *Runner) Started() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.started))
	for _, c := range r.started {
		lines = append(lines, c.String())
	}
	return lines
}

// Ran reports whether any command passed to Run starts with prefix.
func (r *Runner) Ran(prefix string) bool {
	for _, line := range r.Calls() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Process is a controllable process.Process.
type Process struct {
	mu         sync.Mutex
	done       chan struct{}
	exitErr    error
	stdout     string
	stderr     string
	terminated int
	lastGrace  time.Duration
}

// NewProcess returns a process that runs until Exit or Terminate is called.
func NewProcess() *Process {
	return &Process{done: make(chan struct{})}
}

// ExitedProcess returns a process that has already exited with err and
// written stderr.
func ExitedProcess(err error, stderr string) *Process {
	p := NewProcess()
	p.stderr = stderr
	p.Exit(err)
	return p
}

// Exit marks the process as exited. Subsequent calls are ignored.
func (p *Process) Exit(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
	default:
		p.exitErr = err
		close(p.done)
	}
}

// Terminations returns how many times Terminate stopped the running process.
func (p *Process) Terminations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// LastGrace returns the grace period passed to the last Terminate call.
func (p *Process) LastGrace() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastGrace
}

func (p *Process) Pid() int { return 4242 }

func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

func (p *Process) Output() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdout, p.stderr
}

func (p *Process) Terminate(grace time.Duration) error {
	p.mu.Lock()
	p.lastGrace = grace
	p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	default:
	}
	p.mu.Lock()
	p.terminated++
	p.mu.Unlock()
	p.Exit(errors.New("signal: terminated"))
	return nil
}
