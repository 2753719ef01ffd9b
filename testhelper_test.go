package procpipe_test

import (
	"os/exec"
	"time"
)

const (
	timeOutLong = 2 * time.Second
	// timeOutShort is a "short" timeout, for happy cases.
	timeOutShort = 800 * time.Millisecond
	timeOutTiny  = 30 * time.Millisecond
)

const theShell = "/bin/sh"

func shellCmd(script string) *exec.Cmd {
	return exec.Command(theShell, "-c", script)
}

func assertNoErr(err error) {
	if err != nil {
		panic("example failure: unexpected err: " + err.Error())
	}
}
