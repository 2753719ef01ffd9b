package procpipe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Process is a started operating system process with piped stdio.
// A Runner takes exclusive ownership of one.
type Process interface {
	// Stdin is written to feed the process.
	Stdin() io.WriteCloser
	// Stdout is the read side of the process's stdout.
	Stdout() io.ReadCloser
	// Stderr is the read side of the process's stderr.
	Stderr() io.ReadCloser
	// Pid returns the operating system process ID.
	Pid() int
	// Done returns a channel that's closed when the process has exited.
	Done() <-chan struct{}
	// Result describes how the process exited.
	// It's only meaningful after Done is closed.
	Result() Result
	// Kill forcibly terminates the process.
	// Killing a process that already exited is not an error.
	Kill() error
}

// Result describes how a process exited.
type Result struct {
	// ExitCode is the process exit code, or -1 if it was
	// killed by a signal or never ran.
	ExitCode int
	// Killed is true if a signal ended the process.
	Killed bool
	// Err is the error, if any, returned from waiting on the process.
	// A non-zero exit code shows up here as an *exec.ExitError.
	Err error
}

// Success is true if the process exited on its own with code zero.
func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

func (r Result) String() string {
	switch {
	case r.Killed:
		return "killed"
	case r.Success():
		return "exit status 0"
	case r.ExitCode >= 0:
		return fmt.Sprintf("exit status %d", r.ExitCode)
	case r.Err != nil:
		return r.Err.Error()
	default:
		return fmt.Sprintf("exit status %d", r.ExitCode)
	}
}

// Proc is a Process started from an exec.Cmd.
type Proc struct {
	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File
	stderr *os.File

	// done is closed when the process has been reaped.
	done   chan struct{}
	result Result

	// reapMu keeps Kill from signalling a process group
	// whose leader has been reaped, and so whose id may be reused.
	reapMu sync.Mutex

	closeInOnce sync.Once
	closeInErr  error
}

// Start starts cmd with all three stdio streams piped.
//
// The command's Stdin, Stdout and Stderr must be nil.  The pipes are
// plain files rather than exec's own pipes, so waiting on the command
// never closes the read sides while output is still being drained.
// On unix the process gets its own process group, which Kill takes
// down as a whole.  On linux, when the process exits, whatever is
// left in its group is killed before the process is reaped, so
// orphans can't hold the output pipes open.
func Start(cmd *exec.Cmd) (*Proc, error) {
	if cmd == nil {
		return nil, fmt.Errorf("starting process; %w", ErrNilProcess)
	}
	if cmd.Stdin != nil || cmd.Stdout != nil || cmd.Stderr != nil {
		return nil, fmt.Errorf("starting %q; %w", cmd.Path, ErrStdioConfigured)
	}
	var toClose []*os.File
	closeAll := func() {
		for _, f := range toClose {
			_ = f.Close()
		}
	}
	makePipe := func(name string) (r, w *os.File, err error) {
		r, w, err = os.Pipe()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("making %s pipe for %q; %w", name, cmd.Path, err)
		}
		toClose = append(toClose, r, w)
		return r, w, nil
	}
	inR, inW, err := makePipe("stdIn")
	if err != nil {
		return nil, err
	}
	outR, outW, err := makePipe("stdOut")
	if err != nil {
		return nil, err
	}
	errR, errW, err := makePipe("stdErr")
	if err != nil {
		return nil, err
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = inR, outW, errW
	setProcessGroup(cmd)
	if err = cmd.Start(); err != nil {
		closeAll()
		return nil, fmt.Errorf("trying to start %s - %w", cmd.Path, err)
	}
	// The child has its own copies now.
	for _, f := range []*os.File{inR, outW, errW} {
		_ = f.Close()
	}
	p := &Proc{
		cmd:    cmd,
		stdin:  inW,
		stdout: outR,
		stderr: errR,
		done:   make(chan struct{}),
	}
	logger.Printf("started %q as pid %d", abbrev(cmd.String()), p.Pid())
	go p.waitLoop()
	return p, nil
}

// Stdin returns the write side of the process's stdin.
func (p *Proc) Stdin() io.WriteCloser { return (*procStdin)(p) }

// Stdout returns the read side of the process's stdout.
func (p *Proc) Stdout() io.ReadCloser { return p.stdout }

// Stderr returns the read side of the process's stderr.
func (p *Proc) Stderr() io.ReadCloser { return p.stderr }

// Pid returns the process ID.
func (p *Proc) Pid() int { return p.cmd.Process.Pid }

// Done returns a channel that's closed once the process has been reaped.
func (p *Proc) Done() <-chan struct{} { return p.done }

// Result describes how the process exited.
func (p *Proc) Result() Result {
	select {
	case <-p.done:
		return p.result
	default:
		return Result{ExitCode: -1}
	}
}

// Kill forcibly terminates the process and, on unix,
// everything else in its process group.
// Once the process has been reaped, Kill does nothing.
func (p *Proc) Kill() error {
	p.reapMu.Lock()
	defer p.reapMu.Unlock()
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := killProcessGroup(p.Pid()); err != nil {
		logger.Printf("pid %d; group kill failed; %s", p.Pid(), err.Error())
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing pid %d; %w", p.Pid(), err)
	}
	return nil
}

func (p *Proc) waitLoop() {
	pid := p.Pid()
	// An exited but unreaped leader still owns its group id.
	zombie := awaitLeaderExit(pid)
	if zombie {
		p.reapMu.Lock()
		if err := killProcessGroup(pid); err != nil {
			logger.Printf("pid %d; group kill failed; %s", pid, err.Error())
		}
	}
	err := p.cmd.Wait()
	if !zombie {
		p.reapMu.Lock()
	}
	defer p.reapMu.Unlock()
	res := Result{ExitCode: -1, Err: err}
	if state := p.cmd.ProcessState; state != nil {
		res.ExitCode = state.ExitCode()
		res.Killed = signaled(state)
	}
	p.result = res
	logger.Printf("pid %d; reaped with %s", pid, res.String())
	close(p.done)
}

// procStdin makes closing stdin idempotent.
type procStdin Proc

func (in *procStdin) Write(b []byte) (int, error) {
	return in.stdin.Write(b)
}

func (in *procStdin) Close() error {
	in.closeInOnce.Do(func() {
		in.closeInErr = in.stdin.Close()
	})
	return in.closeInErr
}
