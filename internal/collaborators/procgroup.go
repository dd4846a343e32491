package collaborators

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup configures cmd so that it, and every process it spawns,
// share one process group that can be killed as a unit.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillProcessGroup sends sig to the process group led by cmd's process. It
// is safe to call even if the process has already exited.
func KillProcessGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if err == syscall.ESRCH {
		return nil
	}
	return err
}
