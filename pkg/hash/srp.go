package hash

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// SRP is Signed Random Projection, a one-bit LSH for cosine similarity.
// Each of NumHashTables()*hashesPerTable sub-hashes is the sign of a
// point's dot product with an independent random +/-1 vector; hashesPerTable
// of those bits are packed into one integer per table.
type SRP struct {
	numTables      int
	hashesPerTable int
	dim            int
	signs          []int8 // len numTables*hashesPerTable*dim
}

// NewSRP allocates a sign matrix of shape numTables x hashesPerTable x dim
// drawn from rng, each entry independently +1 or -1 with probability 1/2.
func NewSRP(numTables, hashesPerTable, dim int, rng *rand.Rand) (*SRP, error) {
	if numTables <= 0 || dim <= 0 {
		return nil, fmt.Errorf("%w: num_tables and dim must be positive", ErrInvalidConfig)
	}
	if hashesPerTable <= 0 || hashesPerTable >= 32 {
		return nil, fmt.Errorf("%w: hashes_per_table must be in [1,32), got %d", ErrInvalidConfig, hashesPerTable)
	}

	signs := make([]int8, numTables*hashesPerTable*dim)
	for i := range signs {
		if rng.Intn(2) == 0 {
			signs[i] = -1
		} else {
			signs[i] = 1
		}
	}

	return &SRP{
		numTables:      numTables,
		hashesPerTable: hashesPerTable,
		dim:            dim,
		signs:          signs,
	}, nil
}

// NumHashTables returns T.
func (s *SRP) NumHashTables() int { return s.numTables }

// Dim returns the vector dimension this SRP was built for.
func (s *SRP) Dim() int { return s.dim }

// HashRange returns 2^hashesPerTable.
func (s *SRP) HashRange() uint64 { return uint64(1) << uint(s.hashesPerTable) }

// BatchHash hashes numPoints dense, dim-dimensional points, point-major in
// points, returning numPoints*NumHashTables() values. Points are hashed in
// parallel; there is no ordering contract across points.
func (s *SRP) BatchHash(ctx context.Context, points []float32, numPoints int) ([]uint64, error) {
	if numPoints <= 0 || len(points) != numPoints*s.dim {
		return nil, fmt.Errorf("%w: points has %d elements, want numPoints(%d)*dim(%d)",
			ErrInvalidInput, len(points), numPoints, s.dim)
	}

	out := make([]uint64, numPoints*s.numTables)
	var g errgroup.Group
	for p := 0; p < numPoints; p++ {
		p := p
		g.Go(func() error {
			x := points[p*s.dim : (p+1)*s.dim]
			for t := 0; t < s.numTables; t++ {
				out[p*s.numTables+t] = s.hashOne(x, t)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (s *SRP) hashOne(x []float32, table int) uint64 {
	base := table * s.hashesPerTable * s.dim
	var packed uint64
	for k := 0; k < s.hashesPerTable; k++ {
		row := s.signs[base+k*s.dim : base+k*s.dim+s.dim]
		var dot float32
		for i, v := range x {
			dot += v * float32(row[i])
		}
		if dot > 0 {
			packed |= uint64(1) << uint(k)
		}
	}
	return packed
}

// Distance returns cosine distance (1 - cosine similarity), the distance
// function DenseAngular re-ranks SearchWithDistance results by.
func (s *SRP) Distance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
