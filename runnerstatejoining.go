package procpipe

import "context"

// runnerStateJoining implements the "joining" state of the Runner.
// The process has been killed; only the pumps remain.
// A Runner stays here if its join was interrupted.
type runnerStateJoining struct {
	infra *runnerInfra
}

func (st *runnerStateJoining) subShutdown(ctx context.Context) (runnerState, error) {
	st.infra.setPhase(PhaseJoining)
	if err := st.infra.infraJoin(ctx); err != nil {
		return st, err
	}
	st.infra.setPhase(PhaseClosed)
	return &runnerStateClosed{infra: st.infra}, st.infra.pumpFailures()
}

// subStop runs after Stop has killed the process; only the join is left.
func (st *runnerStateJoining) subStop(ctx context.Context) (runnerState, error) {
	return st.subShutdown(ctx)
}
