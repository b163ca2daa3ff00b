//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// terminateGroup kills the process. Windows has no SIGTERM equivalent for
// console processes started this way, so both modes kill.
func terminateGroup(cmd *exec.Cmd, force bool) error {
	return cmd.Process.Kill()
}
