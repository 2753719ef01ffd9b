package procpipe

import (
	"errors"

	"golang.org/x/sys/unix"
)

// awaitLeaderExit blocks until pid exits, leaving it unreaped.
// It returns false if that couldn't be done, in which case
// the caller must reap without relying on it.
func awaitLeaderExit(pid int) bool {
	var info unix.Siginfo
	for {
		err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOWAIT, nil)
		if err == nil {
			return true
		}
		if !errors.Is(err, unix.EINTR) {
			logger.Printf("pid %d; waitid failed; %s", pid, err.Error())
			return false
		}
	}
}
