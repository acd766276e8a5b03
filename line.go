package fixpoint

import (
	"context"
	"errors"
	"fmt"
)

type (
	// Line defines sequence of DSP components allocators. It has a single
	// source, single processor and single sink. Multiple processors are
	// combined into one with Chain.
	Line[In, Out any] struct {
		Source    SourceAllocatorFunc[In]
		Processor ProcessorAllocatorFunc[In, Out]
		Sink      SinkAllocatorFunc[Out]
	}

	// SourceAllocatorFunc returns source for provided buffer size. It is
	// responsible for pre-allocation of all necessary buffers and
	// structures.
	SourceAllocatorFunc[T any] func(bufferSize int) (Source[T], error)

	// ProcessorAllocatorFunc returns processor for provided buffer size.
	// It is responsible for pre-allocation of all necessary buffers and
	// structures.
	ProcessorAllocatorFunc[In, Out any] func(bufferSize int) (Processor[In, Out], error)

	// SinkAllocatorFunc returns sink for provided buffer size. It is
	// responsible for pre-allocation of all necessary buffers and
	// structures.
	SinkAllocatorFunc[T any] func(bufferSize int) (Sink[T], error)

	// SourceFunc writes the signal into output buffer and returns number of
	// written samples. It uses next error conventions:
	// 	- nil if a full buffer was written;
	// 	- io.EOF if no data was written;
	// 	- io.ErrUnexpectedEOF if not a full buffer was written.
	// The latest case means that source executed as expected, but not
	// enough data was available. This incomplete buffer still will be sent
	// further and source will be finished gracefully.
	SourceFunc[T any] func(out []T) (int, error)

	// ProcessFunc processes the input buffer into output buffer and
	// returns number of written samples.
	ProcessFunc[In, Out any] func(in []In, out []Out) (int, error)

	// SinkFunc consumes the input buffer.
	SinkFunc[T any] func(in []T) error

	// StartFunc is a hook that is called before the component starts
	// processing.
	StartFunc func(ctx context.Context) error

	// FlushFunc is a hook that is called when the line is done or
	// interrupted.
	FlushFunc func(ctx context.Context) error

	// Source is a source of signal.
	Source[T any] struct {
		SourceFunc[T]
		StartFunc
		FlushFunc
	}

	// Processor is a transformer of signal.
	Processor[In, Out any] struct {
		ProcessFunc[In, Out]
		StartFunc
		FlushFunc
	}

	// Sink is a destination of signal.
	Sink[T any] struct {
		SinkFunc[T]
		StartFunc
		FlushFunc
	}
)

// ErrMissingComponent is returned when line doesn't define one of its
// components.
var ErrMissingComponent = errors.New("missing component")

// Chain combines two processors into one. Processors are executed
// sequentially in the same goroutine, intermediate signal is kept in a
// buffer of the same size.
func Chain[A, B, C any](first ProcessorAllocatorFunc[A, B], second ProcessorAllocatorFunc[B, C]) ProcessorAllocatorFunc[A, C] {
	return func(bufferSize int) (Processor[A, C], error) {
		p1, err := first.allocate(bufferSize)
		if err != nil {
			return Processor[A, C]{}, fmt.Errorf("first: %w", err)
		}
		p2, err := second.allocate(bufferSize)
		if err != nil {
			return Processor[A, C]{}, fmt.Errorf("second: %w", err)
		}
		buf := make([]B, bufferSize)
		return Processor[A, C]{
			ProcessFunc: func(in []A, out []C) (int, error) {
				n, err := p1.ProcessFunc(in, buf)
				if err != nil {
					return 0, err
				}
				return p2.ProcessFunc(buf[:n], out)
			},
			StartFunc: func(ctx context.Context) error {
				if err := p1.StartFunc.call(ctx); err != nil {
					return err
				}
				if err := p2.StartFunc.call(ctx); err != nil {
					// first one is started and has to be flushed
					if flushErr := p1.FlushFunc.call(ctx); flushErr != nil {
						return execErrors{err, flushErr}
					}
					return err
				}
				return nil
			},
			FlushFunc: func(ctx context.Context) error {
				var errs execErrors
				if err := p1.FlushFunc.call(ctx); err != nil {
					errs = append(errs, err)
				}
				if err := p2.FlushFunc.call(ctx); err != nil {
					errs = append(errs, err)
				}
				return errs.ret()
			},
		}, nil
	}
}

func (fn SourceAllocatorFunc[T]) allocate(bufferSize int) (Source[T], error) {
	if fn == nil {
		return Source[T]{}, ErrMissingComponent
	}
	c, err := fn(bufferSize)
	if err != nil {
		return Source[T]{}, err
	}
	if c.SourceFunc == nil {
		return Source[T]{}, ErrMissingComponent
	}
	return c, nil
}

func (fn ProcessorAllocatorFunc[In, Out]) allocate(bufferSize int) (Processor[In, Out], error) {
	if fn == nil {
		return Processor[In, Out]{}, ErrMissingComponent
	}
	c, err := fn(bufferSize)
	if err != nil {
		return Processor[In, Out]{}, err
	}
	if c.ProcessFunc == nil {
		return Processor[In, Out]{}, ErrMissingComponent
	}
	return c, nil
}

func (fn SinkAllocatorFunc[T]) allocate(bufferSize int) (Sink[T], error) {
	if fn == nil {
		return Sink[T]{}, ErrMissingComponent
	}
	c, err := fn(bufferSize)
	if err != nil {
		return Sink[T]{}, err
	}
	if c.SinkFunc == nil {
		return Sink[T]{}, ErrMissingComponent
	}
	return c, nil
}

func (fn StartFunc) call(ctx context.Context) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (fn FlushFunc) call(ctx context.Context) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
