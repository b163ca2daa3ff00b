package driver

import (
	"sync"
	"time"

	"uirunner/internal/process"
	"uirunner/pkg/logging"
)

// Session is a running Appium server owned by a pipeline run.
type Session struct {
	// URL is the server base address clients connect to.
	URL string

	proc  process.Process
	grace time.Duration

	once sync.Once
	err  error
}

// Release stops the server if it is still running. Only the first call does
// any work; later calls return the first call's result.
func (s *Session) Release() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		logging.Info(driverSubsystem, "Stopping appium (PID: %d)", s.proc.Pid())
		s.err = s.proc.Terminate(s.grace)
	})
	return s.err
}
