package build

import (
	"errors"
	"fmt"
	"strings"

	ustrings "uirunner/pkg/strings"
)

// maxErrorLines bounds the tool output quoted in error messages.
const maxErrorLines = 40

// ToolError reports a failed dotnet invocation.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	// Output holds the captured diagnostics.
	Output string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s failed with exit code %d", e.Tool, strings.Join(e.Args, " "), e.ExitCode)
	if e.Output != "" {
		msg += ":\n" + ustrings.Tail(e.Output, maxErrorLines)
	}
	return msg
}

// IsToolError checks whether err is or wraps a ToolError.
func IsToolError(err error) bool {
	var toolErr *ToolError
	return errors.As(err, &toolErr)
}

// AssemblyNotFoundError reports that no compiled test assembly exists for a project.
type AssemblyNotFoundError struct {
	Project   string
	OutputDir string
}

func (e *AssemblyNotFoundError) Error() string {
	return fmt.Sprintf("test assembly for %s not found in %s", e.Project, e.OutputDir)
}
