package batching

import (
	"context"
	"sync"
	"time"
)

// Future is the pending result of a submitted request. It is completed
// exactly once, either with a value or with an error, and may be waited on
// by any number of goroutines.
type Future[V any] struct {
	once  sync.Once
	done  chan struct{}
	value V
	err   error
}

func newFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

// complete stores the outcome if the future is still pending. Reports
// whether this call was the one that completed it.
func (f *Future[V]) complete(value V, err error) bool {
	completed := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		completed = true
		close(f.done)
	})
	return completed
}

// Done is closed once the future has been completed.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future completes or ctx is done. Giving up on the
// wait does not withdraw the request from its batch.
func (f *Future[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Item is a single queued request as seen by a Processor.
type Item[K comparable, V any] struct {
	Key        K
	EnqueuedAt time.Time

	future *Future[V]
}

// Resolve fulfils the request with value. Returns false if it was already
// resolved or rejected.
func (i *Item[K, V]) Resolve(value V) bool {
	return i.future.complete(value, nil)
}

// Reject fails the request with err. Returns false if it was already
// resolved or rejected.
func (i *Item[K, V]) Reject(err error) bool {
	var zero V
	return i.future.complete(zero, err)
}

// Settled reports whether the request has been resolved or rejected.
func (i *Item[K, V]) Settled() bool {
	select {
	case <-i.future.done:
		return true
	default:
		return false
	}
}

// Future returns the handle callers wait on.
func (i *Item[K, V]) Future() *Future[V] {
	return i.future
}
