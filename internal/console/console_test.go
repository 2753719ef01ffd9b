package console_test

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	. "github.com/monopole/procpipe/internal/console"
	"github.com/stretchr/testify/assert"
)

func TestSinkLabels(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	s.Out("hello")
	s.Err("oops")
	s.Info("pid %d", 42)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if assert.Len(t, lines, 3) {
		assert.Contains(t, lines[0], LabelOut)
		assert.True(t, strings.HasSuffix(lines[0], " hello"))
		assert.Contains(t, lines[1], LabelErr)
		assert.True(t, strings.HasSuffix(lines[1], " oops"))
		assert.Contains(t, lines[2], LabelInfo)
		assert.True(t, strings.HasSuffix(lines[2], " pid 42"))
	}
}

func TestSinkNeverInterleaves(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	long := strings.Repeat("x", 4000)
	var wg sync.WaitGroup
	for _, f := range []func(string){s.Out, s.Err} {
		wg.Add(1)
		go func(f func(string)) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				f(fmt.Sprintf("%03d%s", i, long))
			}
		}(f)
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 400)
	for _, l := range lines {
		assert.True(t, strings.HasSuffix(l, long))
		assert.True(t,
			strings.Contains(l, LabelOut) || strings.Contains(l, LabelErr))
	}
}
