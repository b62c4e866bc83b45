package portalclient

import (
	"context"
	"errors"
	"sync"
)

var ErrWriteInFlight = errors.New("portal: a write is already in flight")

// Optimistic holds a value that can be changed tentatively while the write
// that confirms it is in flight. Value reports the tentative value until the
// write settles; a failed write restores the last committed value.
type Optimistic[T any] struct {
	mu        sync.Mutex
	committed T
	current   T
	pending   bool
}

func NewOptimistic[T any](initial T) *Optimistic[T] {
	return &Optimistic[T]{committed: initial, current: initial}
}

func (o *Optimistic[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *Optimistic[T]) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// Apply shows tentative immediately and runs write. The value returned by
// write becomes the committed value.
func (o *Optimistic[T]) Apply(ctx context.Context, tentative T, write func(context.Context, T) (T, error)) (T, error) {
	o.mu.Lock()
	if o.pending {
		current := o.current
		o.mu.Unlock()
		return current, ErrWriteInFlight
	}
	o.current = tentative
	o.pending = true
	o.mu.Unlock()

	confirmed, err := write(ctx, tentative)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = false
	if err != nil {
		o.current = o.committed
		return o.committed, err
	}
	o.committed = confirmed
	o.current = confirmed
	return confirmed, nil
}
