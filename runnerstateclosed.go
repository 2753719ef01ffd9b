package procpipe

import "context"

// runnerStateClosed implements the terminal "closed" state of the Runner.
// Everything is a no-op here.
type runnerStateClosed struct {
	infra *runnerInfra
}

func (st *runnerStateClosed) subShutdown(_ context.Context) (runnerState, error) {
	logger.Printf("%s; shutdown called, but already closed", st.infra.name)
	return st, nil
}

func (st *runnerStateClosed) subStop(_ context.Context) (runnerState, error) {
	logger.Printf("%s; stop called, but already closed", st.infra.name)
	return st, nil
}
