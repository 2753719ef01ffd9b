//go:build windows

package procpipe

import (
	"os"
	"os/exec"
)

func setProcessGroup(_ *exec.Cmd) {}

// killProcessGroup is a no-op; Kill falls back to os.Process.Kill.
func killProcessGroup(_ int) error { return nil }

func signaled(_ *os.ProcessState) bool { return false }
