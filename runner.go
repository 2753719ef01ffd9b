package procpipe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"github.com/monopole/procpipe/linepump"
	"golang.org/x/text/encoding"
)

// Runner owns a started Process, drains its stdout and stderr
// into line consumers, and offers a writer onto its stdin.
//
// A Runner is in one of these phases:
//
// running: the process may be alive; pumps are reading.
//
//   - Fresh from New or Run.
//   - Ok to write input, Stop, Shutdown or Close.
//
// draining: Shutdown or Stop closed stdin and is waiting for
// the process to exit, or is killing it.
//
// joining: the process is dead, and the pumps are finishing.
//
//   - A Shutdown interrupted during the join leaves the Runner here;
//     call Shutdown or Close again to finish.
//
// closed: everything is released.  Further Shutdown, Stop and
// Close calls do nothing and return nil.
//
// Always arrange for Close to be called, e.g.
//
//	r, err := procpipe.Run(cmd, procpipe.UTF8, out, errOut, procpipe.Params{})
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
// A Runner that's never shut down leaks the process and both pumps.
type Runner struct {
	infra *runnerInfra
	state runnerState
	mutex sync.Mutex
}

// New returns a running Runner wrapping proc, which must already be
// started.  Both pumps start immediately, decoding with enc, which is
// also used to encode anything written to InputWriter.
//
// Lines from the two streams arrive on separate goroutines, so out and
// errOut may be called concurrently; consumers writing to a shared sink
// must synchronize.  A nil consumer discards its lines.
func New(
	proc Process, enc encoding.Encoding,
	out, errOut linepump.Consumer, p Params) (*Runner, error) {
	if proc == nil {
		return nil, fmt.Errorf("making runner; %w", ErrNilProcess)
	}
	if enc == nil {
		return nil, fmt.Errorf("making runner; %w", linepump.ErrNilEncoding)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if proc.Stdin() == nil || proc.Stdout() == nil || proc.Stderr() == nil {
		return nil, fmt.Errorf("making runner; %w", linepump.ErrNilSource)
	}
	id := uuid.NewString()
	infra := &runnerInfra{
		id:     id,
		name:   fmt.Sprintf("%s-%s", p.Name, id[:8]),
		params: p,
		proc:   proc,
		stdIn:  proc.Stdin(),
	}
	var err error
	infra.pumpOut, err = linepump.OpenDecoded(
		infra.name+"/stdOut", out, proc.Stdout(), enc, p.pumpOptions()...)
	if err != nil {
		return nil, err
	}
	infra.pumpErr, err = linepump.OpenDecoded(
		infra.name+"/stdErr", errOut, proc.Stderr(), enc, p.pumpOptions()...)
	if err != nil {
		return nil, err
	}
	infra.input = bufio.NewWriter(enc.NewEncoder().Writer(infra.stdIn))
	infra.setPhase(PhaseRunning)
	logger.Printf("%s; running pid %d", infra.name, proc.Pid())
	return &Runner{
		infra: infra,
		state: &runnerStateRunning{infra: infra},
	}, nil
}

// Run starts cmd via Start, then wraps it in a Runner as New does.
// The command's Stdin, Stdout and Stderr must be nil.
func Run(
	cmd *exec.Cmd, enc encoding.Encoding,
	out, errOut linepump.Consumer, p Params) (*Runner, error) {
	if enc == nil {
		return nil, fmt.Errorf("making runner; %w", linepump.ErrNilEncoding)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	proc, err := Start(cmd)
	if err != nil {
		return nil, err
	}
	r, err := New(proc, enc, out, errOut, p)
	if err != nil {
		_ = proc.Kill()
		_ = proc.Stdin().Close()
		_ = proc.Stdout().Close()
		_ = proc.Stderr().Close()
		return nil, err
	}
	return r, nil
}

// ID returns the Runner's unique identifier.
func (r *Runner) ID() string {
	return r.infra.id
}

// Pid returns the process ID.
func (r *Runner) Pid() int {
	return r.infra.proc.Pid()
}

// State returns the current phase.  It never blocks.
func (r *Runner) State() Phase {
	return Phase(r.infra.phase.Load())
}

// InputWriter returns a buffered writer onto the process's stdin.
// Remember to Flush.  It isn't synchronized; concurrent writers must
// coordinate among themselves, and with Shutdown, which closes stdin.
func (r *Runner) InputWriter() *bufio.Writer {
	return r.infra.input
}

// CloseInput flushes InputWriter and closes the process's stdin,
// telling the process no more input is coming.  The process keeps
// running and the pumps keep reading; Shutdown is still required.
// Closing twice, or shutting down afterward, doesn't close again,
// and a failure to close is reported by later calls too.
func (r *Runner) CloseInput() error {
	flushErr := r.infra.input.Flush()
	if err := r.infra.closeInput(); err != nil {
		return err
	}
	if flushErr != nil {
		return fmt.Errorf("flushing input of %s; %w", r.infra.name, flushErr)
	}
	return nil
}

// OnExit returns a channel that receives the process Result once the
// process exits, then closes.  Each call returns a new channel.
// This only observes the process; it has no effect on shutdown.
func (r *Runner) OnExit() <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		<-r.infra.proc.Done()
		ch <- r.infra.proc.Result()
		close(ch)
	}()
	return ch
}

// OnExitFunc calls action once the process exits, and closes the
// returned channel after action returns.
//
// This does not wait for the pumps to deliver the process's last
// lines; only Shutdown (or Stop, or Close) guarantees that.
func (r *Runner) OnExitFunc(action func(Result)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-r.infra.proc.Done()
		defer func() {
			if x := recover(); x != nil {
				logger.Printf("%s; exit action panicked: %v", r.infra.name, x)
			}
		}()
		action(r.infra.proc.Result())
	}()
	return done
}

// PumpResults returns how the stdOut and stdErr pumps ended.
// A pump that's still running reports a zero Result.
func (r *Runner) PumpResults() (out, errOut linepump.Result) {
	return pumpResult(r.infra.pumpOut), pumpResult(r.infra.pumpErr)
}

// Shutdown stops the process and waits until both pumps have
// delivered everything the process wrote.
//
// It closes stdin, waits up to Params.GracePeriod for the process to
// exit, kills it regardless, then joins the stdErr pump and then the
// stdOut pump.  Shutting down a closed Runner is a no-op.
//
// If ctx ends first, the error matches ErrInterrupted.  The process
// is killed even then, but the pumps might not have been joined;
// calling Shutdown again finishes the job.
func (r *Runner) Shutdown(ctx context.Context) (err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.state, err = r.state.subShutdown(ctx)
	return
}

// Stop kills the process at once, without a grace period,
// then finishes as Shutdown does.
//
// The kill happens before Stop waits for any Shutdown already in
// progress, so Stop also cuts short a Shutdown's grace period.
func (r *Runner) Stop() error {
	if r.State() == PhaseClosed {
		return nil
	}
	killErr := r.infra.infraKill()
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var err error
	r.state, err = r.state.subStop(context.Background())
	return errors.Join(killErr, err)
}

// Close is Shutdown without a deadline, for use with defer.
func (r *Runner) Close() error {
	return r.Shutdown(context.Background())
}
