package procpipe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/monopole/procpipe/linepump"
)

// runnerInfra holds Runner infrastructure shared by all Runner states.
type runnerInfra struct {
	// id is unique per Runner.
	id string

	// name combines Params.Name and part of the id, for logs and pump names.
	name string

	params Params

	// proc is owned exclusively by this Runner.
	proc Process

	// stdIn is the raw process stdin; closing it is step one of shutdown.
	stdIn io.WriteCloser

	// input encodes text onto stdIn.
	input *bufio.Writer

	closeInOnce sync.Once
	closeInErr  error

	pumpOut *linepump.Pump
	pumpErr *linepump.Pump

	// phase mirrors the current runnerState for lock-free observation.
	phase atomic.Int32
}

func (inf *runnerInfra) setPhase(p Phase) {
	logger.Printf("%s; entering phase %s", inf.name, p)
	inf.phase.Store(int32(p))
}

// infraDrain closes stdin, gives the process the grace period to exit,
// then kills it no matter what happened before.
func (inf *runnerInfra) infraDrain(ctx context.Context) error {
	var errs []error
	if err := inf.closeInput(); err != nil {
		errs = append(errs, err)
	} else if err = inf.awaitExit(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := inf.infraKill(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// closeInput closes stdin at most once, returning the same
// result every time.
func (inf *runnerInfra) closeInput() error {
	inf.closeInOnce.Do(func() {
		logger.Printf("%s; closing stdIn", inf.name)
		if err := inf.stdIn.Close(); err != nil {
			logger.Printf("%s; unable to close stdIn; %s", inf.name, err.Error())
			inf.closeInErr = fmt.Errorf("%w; %w", ErrCloseInput, err)
		}
	})
	return inf.closeInErr
}

func (inf *runnerInfra) awaitExit(ctx context.Context) error {
	select {
	case <-inf.proc.Done():
		logger.Printf("%s; process already exited", inf.name)
		return nil
	default:
	}
	logger.Printf("%s; awaiting exit for up to %s", inf.name, inf.params.GracePeriod)
	timer := time.NewTimer(inf.params.GracePeriod)
	defer timer.Stop()
	select {
	case <-inf.proc.Done():
		logger.Printf("%s; process exited within grace period", inf.name)
		return nil
	case <-timer.C:
		logger.Printf("%s; grace period of %s expired", inf.name, inf.params.GracePeriod)
		return nil
	case <-ctx.Done():
		logger.Printf("%s; interrupted awaiting exit", inf.name)
		return fmt.Errorf("%w; awaiting exit of %s; %w", ErrInterrupted, inf.name, ctx.Err())
	}
}

func (inf *runnerInfra) infraKill() error {
	logger.Printf("%s; killing pid %d", inf.name, inf.proc.Pid())
	if err := inf.proc.Kill(); err != nil {
		return fmt.Errorf("%s; %w", inf.name, err)
	}
	return nil
}

// infraJoin waits for the stdErr pump, then the stdOut pump.
func (inf *runnerInfra) infraJoin(ctx context.Context) error {
	for _, p := range []*linepump.Pump{inf.pumpErr, inf.pumpOut} {
		logger.Printf("%s; joining %s", inf.name, p.Name())
		res, err := p.WaitContext(ctx)
		if err != nil {
			logger.Printf("%s; interrupted joining %s", inf.name, p.Name())
			return fmt.Errorf("%w; %w", ErrInterrupted, err)
		}
		logger.Printf("%s; %s joined; %s", inf.name, p.Name(), res)
	}
	return nil
}

// pumpFailures reports pumps that ended early, if Params.Strict.
// Call only after a successful join.
func (inf *runnerInfra) pumpFailures() error {
	if !inf.params.Strict {
		return nil
	}
	var errs []error
	for _, p := range []*linepump.Pump{inf.pumpErr, inf.pumpOut} {
		if res := p.Wait(); res.Failed() {
			errs = append(errs, fmt.Errorf("%w; %s %s", ErrPumpFailed, p.Name(), res))
		}
	}
	return errors.Join(errs...)
}

func pumpResult(p *linepump.Pump) linepump.Result {
	select {
	case <-p.Done():
		return p.Wait()
	default:
		return linepump.Result{}
	}
}
