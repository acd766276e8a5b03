package runtime

import "context"

type (
	// Message is a main structure for line transport.
	Message[T any] struct {
		Signal []T // Buffer of message.
	}

	// Sender sends messages to the next component.
	Sender[T any] interface {
		Send(context.Context, Message[T]) bool
		Close()
	}

	// Receiver receives messages from the previous component.
	Receiver[T any] interface {
		Receive(context.Context) (Message[T], bool)
	}

	// Link connects two components.
	Link[T any] interface {
		Sender[T]
		Receiver[T]
	}

	asyncLink[T any] chan Message[T]
)

// AsyncLink returns link for components which run in separate goroutines.
func AsyncLink[T any]() Link[T] {
	return asyncLink[T](make(chan Message[T], 1))
}

func (l asyncLink[T]) Send(ctx context.Context, m Message[T]) bool {
	select {
	case <-ctx.Done():
		return false
	case l <- m:
		return true
	}
}

func (l asyncLink[T]) Receive(ctx context.Context) (Message[T], bool) {
	var (
		m  Message[T]
		ok bool
	)
	select {
	case <-ctx.Done():
	case m, ok = <-l:
	}
	return m, ok
}

func (l asyncLink[T]) Close() {
	close(l)
}
