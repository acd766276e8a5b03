// Package mock provides mocks for line components and allows to execute
// integration tests.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/pipelined/fixpoint"
)

// Source mocks a fixpoint.Source. It emits Data and finishes.
type Source[T any] struct {
	counter
	Hooks
	Data        []T
	ErrorOnMake error
	ErrorOnCall error
	pos         int
}

// Source returns allocator of the mocked source.
func (m *Source[T]) Source() fixpoint.SourceAllocatorFunc[T] {
	return func(bufferSize int) (fixpoint.Source[T], error) {
		if m.ErrorOnMake != nil {
			return fixpoint.Source[T]{}, m.ErrorOnMake
		}
		return fixpoint.Source[T]{
			SourceFunc: func(out []T) (int, error) {
				if m.ErrorOnCall != nil {
					return 0, m.ErrorOnCall
				}
				if m.pos >= len(m.Data) {
					return 0, io.EOF
				}
				n := copy(out, m.Data[m.pos:])
				m.pos += n
				m.advance(n)
				if n < len(out) {
					return n, io.ErrUnexpectedEOF
				}
				return n, nil
			},
			StartFunc: m.start,
			FlushFunc: m.flush,
		}, nil
	}
}

// Processor mocks a fixpoint.Processor. It applies Fn to every sample.
type Processor[In, Out any] struct {
	counter
	Hooks
	Fn          func(In) Out
	ErrorOnMake error
	ErrorOnCall error
}

// Processor returns allocator of the mocked processor.
func (m *Processor[In, Out]) Processor() fixpoint.ProcessorAllocatorFunc[In, Out] {
	return func(bufferSize int) (fixpoint.Processor[In, Out], error) {
		if m.ErrorOnMake != nil {
			return fixpoint.Processor[In, Out]{}, m.ErrorOnMake
		}
		return fixpoint.Processor[In, Out]{
			ProcessFunc: func(in []In, out []Out) (int, error) {
				if m.ErrorOnCall != nil {
					return 0, m.ErrorOnCall
				}
				for i := range in {
					out[i] = m.Fn(in[i])
				}
				m.advance(len(in))
				return len(in), nil
			},
			StartFunc: m.start,
			FlushFunc: m.flush,
		}, nil
	}
}

// Sink mocks a fixpoint.Sink. It collects all received samples.
// Data is not thread-safe, so should not be checked while line is running.
type Sink[T any] struct {
	counter
	Hooks
	Data        []T
	Discard     bool
	ErrorOnMake error
	ErrorOnCall error
}

// Sink returns allocator of the mocked sink.
func (m *Sink[T]) Sink() fixpoint.SinkAllocatorFunc[T] {
	return func(bufferSize int) (fixpoint.Sink[T], error) {
		if m.ErrorOnMake != nil {
			return fixpoint.Sink[T]{}, m.ErrorOnMake
		}
		return fixpoint.Sink[T]{
			SinkFunc: func(in []T) error {
				if m.ErrorOnCall != nil {
					return m.ErrorOnCall
				}
				if !m.Discard {
					m.Data = append(m.Data, in...)
				}
				m.advance(len(in))
				return nil
			},
			StartFunc: m.start,
			FlushFunc: m.flush,
		}, nil
	}
}

// Hooks allows to mock components hooks.
type Hooks struct {
	mu      sync.Mutex
	started bool
	flushed bool

	ErrorOnStart error
	ErrorOnFlush error
}

func (h *Hooks) start(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = true
	return h.ErrorOnStart
}

func (h *Hooks) flush(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushed = true
	return h.ErrorOnFlush
}

// Started returns true if start hook was called.
func (h *Hooks) Started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

// Flushed returns true if flush hook was called.
func (h *Hooks) Flushed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushed
}

// counter counts messages and samples.
type counter struct {
	messages int
	samples  int
}

// advance counter's metrics.
func (c *counter) advance(size int) {
	c.messages++
	c.samples = c.samples + size
}

// Count returns messages and samples metrics.
func (c *counter) Count() (int, int) {
	return c.messages, c.samples
}
