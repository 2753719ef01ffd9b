package procpipe_test

import (
	"fmt"
	"os/exec"

	. "github.com/monopole/procpipe"
)

// An example using /bin/sh, a shell that's available on most platforms.
func Example_binSh() {
	var out, errOut Recorder
	r, err := Run(
		shellCmd(`
echo alpha
echo oops >&2
echo beta
`), UTF8, out.Consume, errOut.Consume, Params{})
	assertNoErr(err)
	// Close waits for the last line from both streams.
	assertNoErr(r.Close())

	for _, line := range out.Lines() {
		fmt.Println("out:", line)
	}
	for _, line := range errOut.Lines() {
		fmt.Println("err:", line)
	}

	// Output:
	// out: alpha
	// out: beta
	// err: oops
}

// Text written to the input writer is encoded, and output decoded,
// with the same encoding.
func Example_inputWriter() {
	var out Recorder
	r, err := Run(exec.Command("cat"), DOS, out.Consume, nil, Params{})
	assertNoErr(err)
	w := r.InputWriter()
	_, _ = fmt.Fprintln(w, "Größe")
	_, _ = fmt.Fprintln(w, "Maß")
	assertNoErr(w.Flush())
	// Closing stdin lets cat finish on its own.
	assertNoErr(r.Close())

	fmt.Println(out.Lines())

	// Output:
	// [Größe Maß]
}

// A process that would run for a minute is killed at once by Stop.
func Example_stop() {
	r, err := Run(exec.Command("sleep", "60"), UTF8, nil, nil, Params{})
	assertNoErr(err)
	exited := r.OnExit()
	assertNoErr(r.Stop())
	fmt.Println(r.State())
	fmt.Println((<-exited).Killed)
	// Stop and Shutdown are idempotent.
	assertNoErr(r.Stop())
	assertNoErr(r.Close())

	// Output:
	// closed
	// true
}
