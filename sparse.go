package flinng

import (
	"context"
	"fmt"
	"sync"

	"github.com/liliang-cn/flinng/pkg/hash"
	"github.com/liliang-cn/flinng/pkg/index"
)

// Sparse is a FlinngIndex over Densified-MinHash-hashed token sets,
// approximating nearest-neighbor search under Jaccard similarity.
type Sparse struct {
	mu     sync.Mutex
	idx    *index.FlinngIndex
	mh     *hash.MinHash
	tokens [][]uint64 // present only when AddAndStore is used
}

// NewSparse builds an empty Jaccard index. hashRangePow must stay under 32:
// FlinngIndex packs hash values into uint32 buckets.
func NewSparse(b Builder, hashRangePow int) (*Sparse, error) {
	if hashRangePow <= 0 || hashRangePow >= 32 {
		return nil, fmt.Errorf("%w: hash_range_pow must be in [1,32)", ErrInvalidConfig)
	}
	mh, err := hash.NewMinHash(b.NumHashTables, b.HashesPerTable, hashRangePow, uint32(b.Seed))
	if err != nil {
		return nil, err
	}
	idx, err := index.New(b.indexConfig(mh.HashRange()), index.WithRand(b.rng()), index.WithLogger(b.logger()))
	if err != nil {
		return nil, err
	}
	return &Sparse{idx: idx, mh: mh}, nil
}

func (s *Sparse) NumPointsAdded() uint64 { return s.idx.NumPointsAdded() }

func (s *Sparse) PrepareForQueries() { s.idx.PrepareForQueries() }

func (s *Sparse) Stats() map[string]any { return s.idx.Stats() }

// AddPoints hashes and indexes a batch of sparse points, each a set of
// token ids.
func (s *Sparse) AddPoints(ctx context.Context, points [][]uint64) error {
	hashes, err := s.mh.BatchHashSparse(ctx, points)
	if err != nil {
		return err
	}
	return s.idx.AddPoints(ctx, hashes)
}

// Query returns the topK candidate point ids for a query token set.
func (s *Sparse) Query(ctx context.Context, query []uint64, topK int) ([]uint32, error) {
	hashes, err := s.mh.BatchHashSparse(ctx, [][]uint64{query})
	if err != nil {
		return nil, err
	}
	return s.idx.Query(ctx, hashes, uint32(topK))
}

// AddAndStore hashes and indexes tokens, also keeping a copy so
// SearchWithDistance can re-rank by exact Jaccard similarity, and returns
// the new point id.
func (s *Sparse) AddAndStore(ctx context.Context, tokens []uint64) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uint32(s.idx.NumPointsAdded())
	hashes, err := s.mh.BatchHashSparse(ctx, [][]uint64{tokens})
	if err != nil {
		return 0, err
	}
	if err := s.idx.AddPoints(ctx, hashes); err != nil {
		return 0, err
	}
	cp := append([]uint64(nil), tokens...)
	for uint32(len(s.tokens)) < id {
		s.tokens = append(s.tokens, nil)
	}
	s.tokens = append(s.tokens, cp)
	return id, nil
}

// SearchWithDistance queries then re-ranks candidates by exact Jaccard
// distance (1 - |A∩B|/|A∪B|) against token sets kept by AddAndStore.
func (s *Sparse) SearchWithDistance(ctx context.Context, query []uint64, topK int) ([]Result, error) {
	candidates, err := s.Query(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	qset := make(map[uint64]struct{}, len(query))
	for _, t := range query {
		qset[t] = struct{}{}
	}

	out := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if c == index.Unfilled || int(c) >= len(s.tokens) || s.tokens[c] == nil {
			continue
		}
		out = append(out, Result{ID: c, Distance: jaccardDistance(qset, s.tokens[c])})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Distance < out[j-1].Distance; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func jaccardDistance(a map[uint64]struct{}, b []uint64) float32 {
	inter := 0
	seen := make(map[uint64]struct{}, len(b))
	for _, t := range b {
		seen[t] = struct{}{}
		if _, ok := a[t]; ok {
			inter++
		}
	}
	union := len(a) + len(seen) - inter
	if union == 0 {
		return 0
	}
	return float32(1) - float32(inter)/float32(union)
}
