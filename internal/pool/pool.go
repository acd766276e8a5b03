// Package pool provides reusable sample buffers of fixed size.
package pool

import "sync"

// Pool allocates buffers of the same size. It's safe for concurrent use.
type Pool[T any] struct {
	size int
	pool sync.Pool
}

// New returns a pool of buffers with provided size.
func New[T any](size int) *Pool[T] {
	p := Pool[T]{size: size}
	p.pool.New = func() interface{} {
		b := make([]T, size)
		return &b
	}
	return &p
}

// Alloc returns a buffer of pool size.
func (p *Pool[T]) Alloc() []T {
	b := p.pool.Get().(*[]T)
	return (*b)[:p.size]
}

// Free returns buffer to the pool. Buffers of other sizes are dropped.
func (p *Pool[T]) Free(b []T) {
	if cap(b) < p.size {
		return
	}
	b = b[:p.size]
	p.pool.Put(&b)
}

// Size returns the size of pool buffers.
func (p *Pool[T]) Size() int {
	return p.size
}
