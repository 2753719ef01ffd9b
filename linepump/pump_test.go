package linepump_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	. "github.com/monopole/procpipe/linepump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const timeOutShort = 800 * time.Millisecond

// closeCounter is an io.ReadCloser that remembers how often it was closed.
type closeCounter struct {
	io.Reader
	mu     sync.Mutex
	closed int
}

func (c *closeCounter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *closeCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// recorder is a Consumer that remembers lines.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) consume(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines
}

func TestOpenDeliversLinesInOrder(t *testing.T) {
	testCases := map[string]struct {
		input    string
		expected []string
	}{
		"none": {
			input: "",
		},
		"one": {
			input:    "hello\n",
			expected: []string{"hello"},
		},
		"several": {
			input:    "alpha\r\nbeta\ngamma\n",
			expected: []string{"alpha", "beta", "gamma"},
		},
	}
	for n, tc := range testCases {
		t.Run(n, func(t *testing.T) {
			var rec recorder
			src := &closeCounter{Reader: strings.NewReader(tc.input)}
			p, err := Open(n, rec.consume, src)
			require.NoError(t, err)
			res := p.Wait()
			assert.False(t, res.Failed())
			assert.Equal(t, len(tc.expected), res.Lines)
			assert.Equal(t, tc.expected, rec.Lines())
			assert.Equal(t, 1, src.count())
		})
	}
}

func TestOpenStopsOnReadError(t *testing.T) {
	boom := errors.New("boom")
	var rec recorder
	src := &closeCounter{
		Reader: io.MultiReader(
			strings.NewReader("one\ntwo\nthree\n"),
			iotest.ErrReader(boom),
			strings.NewReader("never\n"),
		),
	}
	var hooked error
	p, err := Open("stdOut", rec.consume, src,
		WithErrorHook(func(_ string, err error) { hooked = err }))
	require.NoError(t, err)
	res := p.Wait()
	if assert.True(t, res.Failed()) {
		assert.ErrorIs(t, res.Err, boom)
	}
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, []string{"one", "two", "three"}, rec.Lines())
	assert.ErrorIs(t, hooked, boom)
	assert.Equal(t, 1, src.count())
}

func TestOpenRecoversConsumerPanic(t *testing.T) {
	src := &closeCounter{Reader: strings.NewReader("a\nb\nc\n")}
	n := 0
	p, err := Open("stdErr", func(line string) {
		n++
		if line == "b" {
			panic("no b allowed")
		}
	}, src)
	require.NoError(t, err)
	res := p.Wait()
	assert.ErrorIs(t, res.Err, ErrConsumerPanic)
	assert.Equal(t, 1, res.Lines)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, src.count())
}

func TestOpenLineTooLong(t *testing.T) {
	src := &closeCounter{
		Reader: strings.NewReader("short\n" + strings.Repeat("x", 100) + "\n"),
	}
	var rec recorder
	p, err := Open("long", rec.consume, src, WithMaxLineLen(16))
	require.NoError(t, err)
	res := p.Wait()
	assert.True(t, res.Failed())
	assert.Equal(t, []string{"short"}, rec.Lines())
}

func TestOpenNilArgs(t *testing.T) {
	_, err := Open("x", nil, nil)
	assert.ErrorIs(t, err, ErrNilSource)

	_, err = OpenDecoded("x", nil, io.NopCloser(strings.NewReader("")), nil)
	assert.ErrorIs(t, err, ErrNilEncoding)

	// A nil consumer is fine; lines are discarded.
	p, err := Open("x", nil, io.NopCloser(strings.NewReader("a\nb\n")))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Wait().Lines)
}

func TestOpenDecoded(t *testing.T) {
	t.Run("IBM850", func(t *testing.T) {
		// "Größe" followed by CRLF in code page 850.
		raw := []byte{'G', 'r', 0x94, 0xE1, 'e', '\r', '\n'}
		var rec recorder
		p, err := OpenDecoded("cp850", rec.consume,
			io.NopCloser(strings.NewReader(string(raw))), charmap.CodePage850)
		require.NoError(t, err)
		p.Wait()
		assert.Equal(t, []string{"Größe"}, rec.Lines())
	})
	t.Run("UTF-16LE", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		raw, err := enc.NewEncoder().String("hi\r\nthere\r\n")
		require.NoError(t, err)
		var rec recorder
		p, err := OpenDecoded("utf16", rec.consume,
			io.NopCloser(strings.NewReader(raw)), enc)
		require.NoError(t, err)
		p.Wait()
		assert.Equal(t, []string{"hi", "there"}, rec.Lines())
	})
}

func TestWaitContext(t *testing.T) {
	pr, pw := io.Pipe()
	p, err := Open("blocked", nil, pr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.WaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-p.Done():
		t.Fatal("pump should still be running")
	default:
	}

	// Ending the stream from the writing side is how a pump is stopped.
	_, _ = pw.Write([]byte("last\n"))
	assert.NoError(t, pw.Close())
	ctx2, cancel2 := context.WithTimeout(context.Background(), timeOutShort)
	defer cancel2()
	res, err := p.WaitContext(ctx2)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Lines)
	assert.Equal(t, "blocked", p.Name())
}
