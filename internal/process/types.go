package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Command describes a single invocation of an external tool.
type Command struct {
	// Name is the executable, resolved through PATH when it has no separator.
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
	// Subsystem tags the streamed output in the log. Defaults to Name.
	Subsystem string
}

// String renders the command line for log and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

func (c Command) subsystem() string {
	if c.Subsystem != "" {
		return c.Subsystem
	}
	return c.Name
}

// Result holds the outcome of a completed tool invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Failed reports whether the tool signalled failure, either through a
// non-zero exit code or by writing diagnostics to standard error.
func (r *Result) Failed() bool {
	return r.ExitCode != 0 || strings.TrimSpace(r.Stderr) != ""
}

// Diagnostics returns the most useful failure text: standard error when the
// tool wrote any, standard output otherwise.
func (r *Result) Diagnostics() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes external tools.
type Runner interface {
	// Run executes cmd to completion. A non-zero exit code is not an error;
	// callers inspect the Result.
	Run(ctx context.Context, cmd Command) (*Result, error)
	// Start launches cmd in the background.
	Start(ctx context.Context, cmd Command) (Process, error)
	// LookPath resolves an executable name through PATH.
	LookPath(name string) (string, error)
}

// Process is a running background tool started by Runner.Start.
type Process interface {
	Pid() int
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// ExitErr returns the wait error once Done is closed.
	ExitErr() error
	// Output returns what the process has written so far.
	Output() (stdout, stderr string)
	// Terminate asks the process group to stop and kills it if it has not
	// exited within grace. Terminating an exited process is a no-op.
	Terminate(grace time.Duration) error
}

// NotFoundError reports that an executable could not be resolved.
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s command not found in PATH", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsNotFound checks whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
