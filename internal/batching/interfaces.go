package batching

import (
	"context"
	"errors"
)

var (
	// ErrStopped is returned to requests submitted after Stop and to requests
	// still queued when the batcher stops.
	ErrStopped = errors.New("batcher stopped")

	// ErrUnresolved is returned to requests the processor neither resolved nor
	// rejected before Process returned without an error.
	ErrUnresolved = errors.New("request was not resolved by batch processor")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid batching config")
)

// Processor performs one bulk call for a batch of requests. It should resolve
// or reject every item it is handed. Returning an error rejects every item
// that is still unresolved with that error; there is no automatic retry.
//
// The context passed to Process is never cancelled by the batcher, an
// in-flight batch runs until the processor's own transport gives up.
type Processor[K comparable, V any] interface {
	Process(ctx context.Context, items []*Item[K, V]) error
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc[K comparable, V any] func(ctx context.Context, items []*Item[K, V]) error

// Process calls f(ctx, items).
func (f ProcessorFunc[K, V]) Process(ctx context.Context, items []*Item[K, V]) error {
	return f(ctx, items)
}
