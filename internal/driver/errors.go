package driver

import (
	"errors"
	"fmt"
)

// ErrNotInstalled is returned by Start when Install has not succeeded.
var ErrNotInstalled = errors.New("appium is not installed; Install must succeed before Start")

// InstallError reports a failed installation step.
type InstallError struct {
	Component string
	ExitCode  int
	Output    string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install %s (exit code %d): %s", e.Component, e.ExitCode, e.Output)
}

// StartError reports an Appium server that did not come up.
type StartError struct {
	Reason string
	Output string
	Err    error
}

func (e *StartError) Error() string {
	msg := "appium failed to start: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *StartError) Unwrap() error {
	return e.Err
}
