package procpipe

import (
	"context"
	"errors"
)

// runnerStateRunning implements the "running" state of the Runner.
type runnerStateRunning struct {
	infra *runnerInfra
}

func (st *runnerStateRunning) subShutdown(ctx context.Context) (runnerState, error) {
	st.infra.setPhase(PhaseDraining)
	drainErr := st.infra.infraDrain(ctx)
	next, joinErr := (&runnerStateJoining{infra: st.infra}).subShutdown(ctx)
	return next, errors.Join(drainErr, joinErr)
}

// subStop runs after Stop has killed the process, so the drain
// finds it dead and spends no grace period.
func (st *runnerStateRunning) subStop(ctx context.Context) (runnerState, error) {
	return st.subShutdown(ctx)
}
