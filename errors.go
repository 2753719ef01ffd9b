package procpipe

import "errors"

var (
	// ErrBadParams is returned when Params fail validation.
	ErrBadParams = errors.New("bad params")

	// ErrNilProcess is returned when a Runner is made without a Process.
	ErrNilProcess = errors.New("process is nil")

	// ErrStdioConfigured is returned by Start when the command
	// already has stdin, stdout or stderr set.
	ErrStdioConfigured = errors.New("command stdio already configured")

	// ErrUnknownEncoding is returned by LookupEncoding.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrCloseInput is returned by Shutdown when the process's
	// stdin could not be closed.
	ErrCloseInput = errors.New("unable to close process stdin")

	// ErrInterrupted is returned by Shutdown when its context ended
	// before the protocol finished.
	ErrInterrupted = errors.New("shutdown interrupted")

	// ErrPumpFailed is returned by Shutdown in strict mode when a
	// pump stopped before the end of its stream.
	ErrPumpFailed = errors.New("output pump failed")
)
