package procpipe

import (
	"fmt"
	"io"
	"sync"

	"github.com/monopole/procpipe/linepump"
)

// Discard drops every line.
var Discard linepump.Consumer = linepump.Discard

// PassThru returns a Consumer writing each line, newline terminated,
// to w.  Writes are serialized through mu, which may be shared with
// other PassThru consumers writing to the same place so that lines
// from stdOut and stdErr never interleave mid-line.
func PassThru(w io.Writer, mu *sync.Mutex) linepump.Consumer {
	return func(line string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintln(w, line)
	}
}

// Tee returns a Consumer handing each line to all of cs, in order.
func Tee(cs ...linepump.Consumer) linepump.Consumer {
	return func(line string) {
		for _, c := range cs {
			if c != nil {
				c(line)
			}
		}
	}
}

// Recorder remembers all the lines it sees.
// It's safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	data []string
}

// Consume is a linepump.Consumer.
func (r *Recorder) Consume(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, line)
}

// Lines returns a copy of the lines seen so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return nil
	}
	return append([]string(nil), r.data...)
}

// Reset forgets everything.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
}
