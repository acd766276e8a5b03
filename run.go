package fixpoint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/pipelined/fixpoint/internal/pool"
	"github.com/pipelined/fixpoint/internal/runtime"
	"github.com/pipelined/fixpoint/log"
)

type (
	// Runner is a running line. It's returned by Line.Run and allows to
	// wait for the line execution to finish.
	Runner struct {
		id       string
		cancelFn context.CancelFunc
		done     chan struct{}
		err      error
	}

	// Option provides a way to set functional parameters to the run.
	Option func(*options)

	options struct {
		name   string
		logger logrus.FieldLogger
	}

	execErrors []error
)

// ErrBufferSize is returned when line is run with non-positive buffer size.
var ErrBufferSize = errors.New("invalid buffer size")

// WithLogger sets logger for the run. If this option is not provided,
// log.GetLogger is used.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName sets the name of the run, it's used in log fields.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Run allocates all components of the line and starts them. Every
// component runs in its own goroutine. If any of allocators failed, the
// error will be returned and hooks won't be triggered.
func (l Line[In, Out]) Run(ctx context.Context, bufferSize int, opts ...Option) (*Runner, error) {
	if bufferSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBufferSize, bufferSize)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.GetLogger()
	}

	source, err := l.Source.allocate(bufferSize)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	processor, err := l.Processor.allocate(bufferSize)
	if err != nil {
		return nil, fmt.Errorf("processor: %w", err)
	}
	sink, err := l.Sink.allocate(bufferSize)
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}

	var (
		input  = pool.New[In](bufferSize)
		output = pool.New[Out](bufferSize)
		in     = runtime.AsyncLink[In]()
		out    = runtime.AsyncLink[Out]()
	)
	executors := []struct {
		kind string
		runtime.Executor
	}{
		{
			kind: "source",
			Executor: runtime.Source[In]{
				OutputPool: input,
				SourceFunc: source.SourceFunc,
				StartFunc:  runtime.StartFunc(source.StartFunc),
				FlushFunc:  runtime.FlushFunc(source.FlushFunc),
				Sender:     in,
			},
		},
		{
			kind: "processor",
			Executor: runtime.Processor[In, Out]{
				InputPool:   input,
				OutputPool:  output,
				ProcessFunc: processor.ProcessFunc,
				StartFunc:   runtime.StartFunc(processor.StartFunc),
				FlushFunc:   runtime.FlushFunc(processor.FlushFunc),
				Receiver:    in,
				Sender:      out,
			},
		},
		{
			kind: "sink",
			Executor: runtime.Sink[Out]{
				InputPool: output,
				SinkFunc:  sink.SinkFunc,
				StartFunc: runtime.StartFunc(sink.StartFunc),
				FlushFunc: runtime.FlushFunc(sink.FlushFunc),
				Receiver:  out,
			},
		},
	}

	r := Runner{
		id:   xid.New().String(),
		done: make(chan struct{}),
	}
	logger := o.logger.WithField("line", r.id)
	if o.name != "" {
		logger = logger.WithField("name", o.name)
	}

	runCtx, cancelFn := context.WithCancel(ctx)
	r.cancelFn = cancelFn
	merger := errorMerger{
		errorChan: make(chan error, 1),
	}
	for _, e := range executors {
		logger.WithField("component", e.kind).Debug("starting component")
		merger.add(e.kind, runtime.Run(runCtx, e.Executor))
	}
	go merger.wait()
	logger.WithField("buffer_size", bufferSize).Info("line started")

	go func() {
		defer close(r.done)
		err, ok := <-merger.errorChan
		// stop all components and wait until they are done
		cancelFn()
		merger.drain()
		switch {
		case ok:
			logger.WithError(err).Info("line failed")
			r.err = err
		case ctx.Err() != nil:
			logger.WithError(ctx.Err()).Info("line interrupted")
			r.err = ctx.Err()
		default:
			logger.Info("line done")
		}
	}()
	return &r, nil
}

// ID returns the unique id of the run.
func (r *Runner) ID() string {
	return r.id
}

// Wait blocks until all components are done and returns the first error
// that occurred. If the parent context is done before the source is
// exhausted, its error is returned. Consequent calls return the same
// result.
func (r *Runner) Wait() error {
	<-r.done
	return r.err
}

// Cancel interrupts the run. Wait should be called to wait until all
// components are done.
func (r *Runner) Cancel() {
	r.cancelFn()
}

func (e execErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Unwrap allows to match errors with errors.Is and errors.As.
func (e execErrors) Unwrap() []error {
	return e
}

// ret returns untyped nil if error is list is empty.
func (e execErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
