// Package rawstore holds the raw vector bytes a FlinngIndex only ever sees
// as hashes. A TypedIndex attaches one of these so SearchWithDistance can
// re-rank candidate point ids against their real vectors and AddAndStore
// can hand back a point id that resolves to data later.
package rawstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Fetch for a point id the store never received.
var ErrNotFound = errors.New("rawstore: point not found")

// ErrClosed is returned by any call made after Close.
var ErrClosed = errors.New("rawstore: store is closed")

// Store persists vectors point-id-major so a TypedIndex can look one back
// up after a hash-only FlinngIndex query returns its id. Point ids are
// assigned densely starting at 0, in Append order, matching FlinngIndex's
// own id assignment.
type Store interface {
	// Append stores vector under the next point id and returns it.
	Append(ctx context.Context, vector []float32) (uint32, error)
	// Fetch returns the vector previously stored under id.
	Fetch(ctx context.Context, id uint32) ([]float32, error)
	// Len returns the number of vectors stored.
	Len() uint64
	// Close releases any held resources. Further calls fail with ErrClosed.
	Close() error
}
