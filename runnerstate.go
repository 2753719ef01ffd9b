package procpipe

import (
	"context"
	"fmt"
)

// Phase is the externally visible state of a Runner.
type Phase int32

const (
	// PhaseRunning means the process and its pumps are live.
	PhaseRunning Phase = iota
	// PhaseDraining means stdin is closed and the runner is waiting
	// for the process to exit, or killing it.
	PhaseDraining
	// PhaseJoining means the process is gone and the runner is
	// waiting for the pumps to deliver their last lines.
	PhaseJoining
	// PhaseClosed is terminal.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseJoining:
		return "joining"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(p))
	}
}

// runnerState is the internal representation of Runner state.
// Every Runner state must implement runnerState.
// Draining is transient; it only exists inside a call that
// leaves the running state.
type runnerState interface {
	subShutdown(context.Context) (runnerState, error)
	subStop(context.Context) (runnerState, error)
}
