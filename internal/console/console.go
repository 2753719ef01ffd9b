// Package console prints process output lines to a terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Label prefixes.
const (
	LabelOut  = "out:"
	LabelErr  = "err:"
	LabelInfo = "---"
)

// Sink writes labelled lines to one writer.
// Its methods are safe to call from both pumps at once;
// a line is always written whole.
type Sink struct {
	mu       sync.Mutex
	w        io.Writer
	outLabel string
	errLabel string
	infLabel string
}

// New returns a Sink writing to w.  Labels are colored only
// if w is a terminal that supports color.
func New(w io.Writer) *Sink {
	r := lipgloss.NewRenderer(w)
	return &Sink{
		w:        w,
		outLabel: r.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render(LabelOut),
		errLabel: r.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true).Render(LabelErr),
		infLabel: r.NewStyle().Foreground(lipgloss.Color("#888888")).Render(LabelInfo),
	}
}

// Out prints a line from the process's stdout.
func (s *Sink) Out(line string) {
	s.print(s.outLabel, line)
}

// Err prints a line from the process's stderr.
func (s *Sink) Err(line string) {
	s.print(s.errLabel, line)
}

// Info prints a line about the process.
func (s *Sink) Info(format string, args ...any) {
	s.print(s.infLabel, fmt.Sprintf(format, args...))
}

func (s *Sink) print(label, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "%s %s\n", label, line)
}
