package linepump

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Consumer receives lines, with terminators removed.
// It's called synchronously on the pump's goroutine, so a Consumer
// that blocks stalls the pump, and anything waiting to join it.
type Consumer func(line string)

// Discard is a Consumer that drops every line.
func Discard(string) {}

// DefaultMaxLineLen bounds the length of a single line.
// A longer line fails the pump.
const DefaultMaxLineLen = 1024 * 1024

const initialBufSize = 4096

var (
	// ErrNilSource is returned when opening a pump without a source.
	ErrNilSource = errors.New("pump source is nil")

	// ErrNilEncoding is returned when a byte source has no encoding.
	ErrNilEncoding = errors.New("pump encoding is nil")

	// ErrConsumerPanic is recorded when a Consumer panics.
	ErrConsumerPanic = errors.New("pump consumer panicked")
)

// ErrorHook observes the error that ended a pump.
type ErrorHook func(name string, err error)

// Option configures a Pump.
type Option func(*Pump)

// WithMaxLineLen sets the longest acceptable line.
// Values below one are ignored.
func WithMaxLineLen(n int) Option {
	return func(p *Pump) {
		if n > 0 {
			p.maxLineLen = n
		}
	}
}

// WithErrorHook arranges for hook to be called, on the pump's
// goroutine, if the pump ends with an error.
func WithErrorHook(hook ErrorHook) Option {
	return func(p *Pump) {
		p.onError = hook
	}
}

// Result says how a pump ended.
type Result struct {
	// Lines is the number of lines handed to the Consumer.
	Lines int
	// Err is nil if the pump reached the end of its stream,
	// else the reason it stopped early.
	Err error
}

// Failed is true if the pump stopped before the end of its stream.
func (r Result) Failed() bool {
	return r.Err != nil
}

func (r Result) String() string {
	if r.Failed() {
		return fmt.Sprintf("failed after %d lines; %s", r.Lines, r.Err.Error())
	}
	return fmt.Sprintf("end of stream after %d lines", r.Lines)
}

// Pump reads lines from a source on its own goroutine
// and hands each one to a Consumer, in order.
//
// A Pump owns its source, closing it when the read loop exits,
// so nobody else should close the source while the pump runs.
// The only way to end a pump early is to make its source end,
// e.g. by killing the process writing into it.
type Pump struct {
	name       string
	consumer   Consumer
	source     io.Closer
	reader     io.Reader
	maxLineLen int
	onError    ErrorHook
	done       chan struct{}
	result     Result
}

// Open starts a Pump reading lines of text from source.
// It doesn't block. A nil consumer discards lines.
func Open(
	name string, consumer Consumer, source io.ReadCloser, opts ...Option) (*Pump, error) {
	if source == nil {
		return nil, fmt.Errorf("opening pump %q; %w", name, ErrNilSource)
	}
	return start(name, consumer, source, source, opts), nil
}

// OpenDecoded is like Open, except source holds bytes in the given
// encoding, which are decoded to text before being split into lines.
func OpenDecoded(
	name string, consumer Consumer, source io.ReadCloser,
	enc encoding.Encoding, opts ...Option) (*Pump, error) {
	if source == nil {
		return nil, fmt.Errorf("opening pump %q; %w", name, ErrNilSource)
	}
	if enc == nil {
		return nil, fmt.Errorf("opening pump %q; %w", name, ErrNilEncoding)
	}
	return start(
		name, consumer, transform.NewReader(source, enc.NewDecoder()),
		source, opts), nil
}

func start(
	name string, consumer Consumer, r io.Reader, c io.Closer, opts []Option) *Pump {
	if consumer == nil {
		consumer = Discard
	}
	p := &Pump{
		name:       name,
		consumer:   consumer,
		source:     c,
		reader:     r,
		maxLineLen: DefaultMaxLineLen,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Name returns the name given at Open.
func (p *Pump) Name() string {
	return p.name
}

// Done returns a channel that's closed when the pump has exited.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the pump has exited.
func (p *Pump) Wait() Result {
	<-p.done
	return p.result
}

// WaitContext is like Wait, but gives up when ctx is done.
func (p *Pump) WaitContext(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	default:
	}
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("waiting for pump %q; %w", p.name, ctx.Err())
	}
}

func (p *Pump) run() {
	defer close(p.done)
	defer p.closeSource()
	defer p.recoverConsumer()
	logger.Printf("%s; awaiting data...", p.name)
	scanner := bufio.NewScanner(p.reader)
	scanner.Buffer(make([]byte, 0, min(initialBufSize, p.maxLineLen)), p.maxLineLen)
	scanner.Split(NewLineSplitter())
	for scanner.Scan() {
		line := scanner.Text()
		logger.Printf("%s; read line #%d: %q", p.name, p.result.Lines+1, abbrev(line))
		p.consumer(line)
		p.result.Lines++
	}
	if err := scanner.Err(); err != nil {
		// Intentionally not passed to the consumer.
		logger.Printf("%s; read error after %d lines: %s", p.name, p.result.Lines, err.Error())
		p.fail(fmt.Errorf("reading %s; %w", p.name, err))
		return
	}
	logger.Printf("%s; end of stream after %d lines", p.name, p.result.Lines)
}

func (p *Pump) recoverConsumer() {
	if r := recover(); r != nil {
		logger.Printf("%s; consumer panic: %v", p.name, r)
		p.fail(fmt.Errorf("%w in %s: %v", ErrConsumerPanic, p.name, r))
	}
}

func (p *Pump) fail(err error) {
	p.result.Err = err
	if p.onError != nil {
		p.onError(p.name, err)
	}
}

func (p *Pump) closeSource() {
	if err := p.source.Close(); err != nil {
		logger.Printf("%s; unable to close source; %s", p.name, err.Error())
	}
}
