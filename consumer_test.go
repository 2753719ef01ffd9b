package procpipe_test

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	. "github.com/monopole/procpipe"
	"github.com/stretchr/testify/assert"
)

func TestPassThruSerializes(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	out := PassThru(&buf, &mu)
	errOut := PassThru(&buf, &mu)
	var wg sync.WaitGroup
	for _, c := range []func(string){out, errOut} {
		wg.Add(1)
		go func(c func(string)) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c(fmt.Sprintf("line-%03d", i))
			}
		}(c)
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 200)
	for _, l := range lines {
		assert.Len(t, l, len("line-000"))
	}
}

func TestTee(t *testing.T) {
	var a, b Recorder
	c := Tee(a.Consume, nil, b.Consume, Discard)
	c("one")
	c("two")
	assert.Equal(t, []string{"one", "two"}, a.Lines())
	assert.Equal(t, []string{"one", "two"}, b.Lines())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Nil(t, r.Lines())
	r.Consume("x")
	lines := r.Lines()
	lines[0] = "changed"
	assert.Equal(t, []string{"x"}, r.Lines())
	r.Reset()
	assert.Nil(t, r.Lines())
}
