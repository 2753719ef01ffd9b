package procpipe

import (
	"fmt"
	"time"

	"github.com/monopole/procpipe/linepump"
)

// Params is a bag of parameters for a Runner.
// The zero value is usable; see individual fields for defaults.
type Params struct {
	// Name labels the runner's pumps and log lines.
	Name string

	// GracePeriod is how long Shutdown waits, after closing the
	// process's stdin, for the process to exit on its own before
	// killing it.
	GracePeriod time.Duration

	// MaxLineLen is the longest line a pump accepts.  A longer
	// line ends that pump, as any other read error would.
	MaxLineLen int

	// Strict, if true, makes Shutdown return ErrPumpFailed when
	// either pump stopped before the end of its stream.
	// Otherwise such failures are only logged and reported to
	// OnPumpError.
	Strict bool

	// OnPumpError, if not nil, is called from the failing pump's
	// goroutine with the pump name and the error that stopped it.
	OnPumpError func(name string, err error)
}

const (
	defaultName        = "proc"
	defaultGracePeriod = 5 * time.Second
)

// Validate returns an error if there's a problem in the Params.
// It fills in defaults for unset fields.
func (p *Params) Validate() error {
	if p.GracePeriod < 0 {
		return paramErr("grace period %s must not be negative", p.GracePeriod)
	}
	if p.MaxLineLen < 0 {
		return paramErr("max line length %d must not be negative", p.MaxLineLen)
	}
	p.setDefaults()
	return nil
}

func (p *Params) setDefaults() {
	if p.Name == "" {
		p.Name = defaultName
	}
	if p.GracePeriod == 0 {
		p.GracePeriod = defaultGracePeriod
	}
	if p.MaxLineLen == 0 {
		p.MaxLineLen = linepump.DefaultMaxLineLen
	}
}

func (p *Params) pumpOptions() []linepump.Option {
	opts := []linepump.Option{linepump.WithMaxLineLen(p.MaxLineLen)}
	if p.OnPumpError != nil {
		opts = append(opts, linepump.WithErrorHook(p.OnPumpError))
	}
	return opts
}

func paramErr(format string, args ...any) error {
	return fmt.Errorf("%w; %s", ErrBadParams, fmt.Sprintf(format, args...))
}
