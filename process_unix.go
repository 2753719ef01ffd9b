//go:build !windows

package procpipe

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup puts the child in a new process group so that
// it and anything it spawns can be killed together.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	if cmd.SysProcAttr.Setsid {
		// A session leader already leads its own group,
		// and may not call setpgid.
		return
	}
	cmd.SysProcAttr.Setpgid = true
}

// killProcessGroup sends SIGKILL to the group led by pid.
// A group that no longer exists is not an error.
func killProcessGroup(pid int) error {
	err := unix.Kill(-pid, unix.SIGKILL)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func signaled(state *os.ProcessState) bool {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		return ws.Signaled()
	}
	return false
}
