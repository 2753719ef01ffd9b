//go:build !linux

package procpipe

// awaitLeaderExit is only supported on linux.
func awaitLeaderExit(_ int) bool { return false }
