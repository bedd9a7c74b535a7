package flinng

import (
	"context"
	"fmt"
	"sync"

	"github.com/liliang-cn/flinng/pkg/index"
	"github.com/liliang-cn/flinng/pkg/rawstore"
)

// Result is one ranked hit from SearchWithDistance: a candidate FlinngIndex
// surfaced, re-ranked against its stored raw vector.
type Result struct {
	ID       uint32
	Distance float32
}

// distancer is the part of a hash.SRP/hash.L2LSH a TypedIndex needs for
// re-ranking; both families implement it already.
type distancer interface {
	Distance(a, b []float32) float32
}

// base holds the parts every dense TypedIndex wrapper shares: the
// hash-agnostic FlinngIndex core, an optional raw-vector store for
// AddAndStore/SearchWithDistance, and a mutex that keeps "assign the next
// point id" atomic across the index and the store together, since the two
// must stay in lockstep.
type base struct {
	mu    sync.Mutex
	idx   *index.FlinngIndex
	store rawstore.Store
	dim   int
}

func (b *base) NumPointsAdded() uint64 { return b.idx.NumPointsAdded() }

func (b *base) PrepareForQueries() { b.idx.PrepareForQueries() }

func (b *base) Stats() map[string]any { return b.idx.Stats() }

// addAndStore appends vector to the raw store (if attached) and hashes to
// idx under the same point id, so id 0 of the index always refers to the
// 0th stored vector.
func (b *base) addAndStore(ctx context.Context, vector []float32, hashes []uint64) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store != nil {
		wantID := uint32(b.idx.NumPointsAdded())
		gotID, err := b.store.Append(ctx, vector)
		if err != nil {
			return 0, fmt.Errorf("flinng: store vector: %w", err)
		}
		if gotID != wantID {
			return 0, fmt.Errorf("flinng: raw store id %d diverged from index id %d", gotID, wantID)
		}
	}
	id := uint32(b.idx.NumPointsAdded())
	if err := b.idx.AddPoints(ctx, hashes); err != nil {
		return 0, err
	}
	return id, nil
}

// searchWithDistance queries idx for topK candidates then re-ranks every
// filled one against the raw store using d.
func (b *base) searchWithDistance(ctx context.Context, query []float32, queryHashes []uint64, topK int, d distancer) ([]Result, error) {
	if b.store == nil {
		return nil, ErrNoRawStore
	}
	candidates, err := b.idx.Query(ctx, queryHashes, uint32(topK))
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if c == index.Unfilled {
			continue
		}
		vec, err := b.store.Fetch(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, Result{ID: c, Distance: d.Distance(query, vec)})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Distance < out[j-1].Distance; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func validateDim(dim int, vector []float32) error {
	if len(vector) != dim {
		return fmt.Errorf("%w: vector has %d elements, want %d", ErrDimMismatch, len(vector), dim)
	}
	return nil
}
