package device

import (
	"errors"
	"fmt"

	"uirunner/internal/platform"
	ustrings "uirunner/pkg/strings"
)

// DeviceNotFoundError reports that no usable device could be found or booted.
type DeviceNotFoundError struct {
	Platform platform.Platform
	Reason   string
	Err      error
}

func (e *DeviceNotFoundError) Error() string {
	msg := fmt.Sprintf("no %s device found", e.Platform)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeviceNotFoundError) Unwrap() error {
	return e.Err
}

// IsDeviceNotFound checks whether err is or wraps a DeviceNotFoundError.
func IsDeviceNotFound(err error) bool {
	var notFound *DeviceNotFoundError
	return errors.As(err, &notFound)
}

// CommandError reports a failed SDK tool invocation.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed with exit code %d", e.Command, e.ExitCode)
	if e.Output != "" {
		msg += ": " + ustrings.Tail(e.Output, 20)
	}
	return msg
}
