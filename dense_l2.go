package flinng

import (
	"context"
	"fmt"

	"github.com/liliang-cn/flinng/pkg/hash"
	"github.com/liliang-cn/flinng/pkg/index"
	"github.com/liliang-cn/flinng/pkg/rawstore"
)

// DenseL2 is a FlinngIndex over L2-LSH-hashed dense vectors, approximating
// nearest-neighbor search under Euclidean distance.
type DenseL2 struct {
	base
	l2 *hash.L2LSH
}

// NewDenseL2 builds an empty Euclidean index for b.Dim-dimensional vectors.
func NewDenseL2(b Builder) (*DenseL2, error) {
	if b.Dim <= 0 {
		return nil, fmt.Errorf("%w: dim must be positive", ErrInvalidConfig)
	}
	rng := b.rng()
	l2, err := hash.NewL2LSH(b.NumHashTables, b.HashesPerTable, b.Dim, b.SubHashBits, b.Cutoff, rng)
	if err != nil {
		return nil, err
	}
	idx, err := index.New(b.indexConfig(l2.HashRange()), index.WithRand(rng), index.WithLogger(b.logger()))
	if err != nil {
		return nil, err
	}
	return &DenseL2{base: base{idx: idx, dim: b.Dim}, l2: l2}, nil
}

// AttachStore wires a raw-vector store for subsequent AddAndStore /
// SearchWithDistance calls. store must already hold exactly
// NumPointsAdded() vectors.
func (d *DenseL2) AttachStore(store rawstore.Store) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store = store
}

// AddPoints hashes and indexes a batch of numPoints vectors, point-major in
// points.
func (d *DenseL2) AddPoints(ctx context.Context, points []float32, numPoints int) error {
	hashes, err := d.l2.BatchHash(ctx, points, numPoints)
	if err != nil {
		return err
	}
	return d.idx.AddPoints(ctx, hashes)
}

// Query returns the topK candidate point ids for query, unfilled slots set
// to index.Unfilled.
func (d *DenseL2) Query(ctx context.Context, query []float32, topK int) ([]uint32, error) {
	if err := validateDim(d.dim, query); err != nil {
		return nil, err
	}
	hashes, err := d.l2.BatchHash(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	return d.idx.Query(ctx, hashes, uint32(topK))
}

// AddAndStore hashes and indexes vector, also appending it to the attached
// raw-vector store, and returns its new point id.
func (d *DenseL2) AddAndStore(ctx context.Context, vector []float32) (uint32, error) {
	if err := validateDim(d.dim, vector); err != nil {
		return 0, err
	}
	hashes, err := d.l2.BatchHash(ctx, vector, 1)
	if err != nil {
		return 0, err
	}
	return d.addAndStore(ctx, vector, hashes)
}

// SearchWithDistance queries then re-ranks candidates by true Euclidean
// distance against the attached raw-vector store.
func (d *DenseL2) SearchWithDistance(ctx context.Context, query []float32, topK int) ([]Result, error) {
	if err := validateDim(d.dim, query); err != nil {
		return nil, err
	}
	hashes, err := d.l2.BatchHash(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	return d.searchWithDistance(ctx, query, hashes, topK, d.l2)
}
