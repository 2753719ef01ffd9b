// Package procpipe runs an external process with piped stdio,
// turning its stdout and stderr into lines of text delivered to
// callbacks, and shutting it down in bounded time.
//
// Start the process with Start (or let Run do it), hand it to a Runner
// along with the text encoding the process speaks, and always Close
// the Runner.  Closing stdin, waiting for a voluntary exit, killing,
// and draining the last lines are all handled by Runner.Shutdown.
//
// The package linepump holds the goroutine that turns a byte stream
// into lines.  See example_test.go for usage.
package procpipe
