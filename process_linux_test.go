package procpipe_test

import (
	"io"
	"testing"
	"time"

	. "github.com/monopole/procpipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcOrphansDieWithLeader(t *testing.T) {
	// The shell exits at once, leaving sleep holding stdout.
	p, err := Start(shellCmd("sleep 60 & echo up"))
	require.NoError(t, err)
	res := waitDone(t, p)
	assert.True(t, res.Success())

	got := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(p.Stdout())
		got <- string(b)
	}()
	select {
	case s := <-got:
		assert.Equal(t, "up\n", s)
	case <-time.After(timeOutLong):
		t.Fatal("orphan still holds stdout")
	}
	// The leader is reaped; its group id is no longer ours to signal.
	assert.NoError(t, p.Kill())
}

func TestShutdownAfterLeaderLeftOrphans(t *testing.T) {
	var out Recorder
	r, err := Run(shellCmd("sleep 60 & echo up"), UTF8, out.Consume, nil,
		Params{GracePeriod: time.Minute})
	require.NoError(t, err)
	<-r.OnExit()
	start := time.Now()
	assert.NoError(t, r.Close())
	assert.Less(t, time.Since(start), timeOutLong)
	assert.Equal(t, []string{"up"}, out.Lines())
}
