package runtime

import (
	"context"
	"errors"
	"io"

	"github.com/pipelined/fixpoint/internal/pool"
)

// Source is the executor for source component.
type Source[T any] struct {
	OutputPool *pool.Pool[T]
	SourceFunc func([]T) (int, error)
	StartFunc
	FlushFunc
	Sender Sender[T]
}

// Execute does a single iteration of source component. io.EOF is returned
// if source is done or context is done.
func (e Source[T]) Execute(ctx context.Context) error {
	if ctx.Err() != nil {
		e.Sender.Close()
		return io.EOF
	}

	out := e.OutputPool.Alloc()
	read, err := e.SourceFunc(out)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		e.Sender.Close()
		e.OutputPool.Free(out)
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// send the last incomplete buffer
		if read > 0 && e.Sender.Send(ctx, Message[T]{Signal: out[:read]}) {
			e.Sender.Close()
			return io.EOF
		}
		e.Sender.Close()
		e.OutputPool.Free(out)
		return io.EOF
	default:
		e.Sender.Close()
		e.OutputPool.Free(out)
		return err
	}

	if !e.Sender.Send(ctx, Message[T]{Signal: out[:read]}) {
		e.Sender.Close()
		e.OutputPool.Free(out)
		return io.EOF
	}
	return nil
}

// Processor is the executor for processor component.
type Processor[In, Out any] struct {
	InputPool   *pool.Pool[In]
	OutputPool  *pool.Pool[Out]
	ProcessFunc func([]In, []Out) (int, error)
	StartFunc
	FlushFunc
	Receiver Receiver[In]
	Sender   Sender[Out]
}

// Execute does a single iteration of processor component. io.EOF is
// returned if input is closed or context is done.
func (e Processor[In, Out]) Execute(ctx context.Context) error {
	m, ok := e.Receiver.Receive(ctx)
	if !ok {
		e.Sender.Close()
		return io.EOF
	}

	out := e.OutputPool.Alloc()
	n, err := e.ProcessFunc(m.Signal, out)
	e.InputPool.Free(m.Signal)
	if err != nil {
		e.Sender.Close()
		e.OutputPool.Free(out)
		return err
	}

	if !e.Sender.Send(ctx, Message[Out]{Signal: out[:n]}) {
		e.Sender.Close()
		e.OutputPool.Free(out)
		return io.EOF
	}
	return nil
}

// Sink is the executor for sink component.
type Sink[T any] struct {
	InputPool *pool.Pool[T]
	SinkFunc  func([]T) error
	StartFunc
	FlushFunc
	Receiver Receiver[T]
}

// Execute does a single iteration of sink component. io.EOF is returned if
// input is closed or context is done.
func (e Sink[T]) Execute(ctx context.Context) error {
	m, ok := e.Receiver.Receive(ctx)
	if !ok {
		return io.EOF
	}

	err := e.SinkFunc(m.Signal)
	e.InputPool.Free(m.Signal)
	return err
}
