package hash

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// L2LSH is the Euclidean-distance LSH family. It shares SRP's random
// sign-projection sign matrix shape, but quantizes each projection's dot
// product into subHashBits bits instead of taking just its sign, and packs
// hashesPerTable of those wider sub-hashes per table.
type L2LSH struct {
	numTables      int
	hashesPerTable int
	dim            int
	subHashBits    int
	cutoff         int
	signs          []int8 // len numTables*hashesPerTable*dim
}

// NewL2LSH allocates the sign matrix and validates that
// subHashBits*hashesPerTable stays under 32, the packed-width ceiling the
// aggregation path (32-bit hash values) imposes.
func NewL2LSH(numTables, hashesPerTable, dim, subHashBits, cutoff int, rng *rand.Rand) (*L2LSH, error) {
	if numTables <= 0 || dim <= 0 || hashesPerTable <= 0 {
		return nil, fmt.Errorf("%w: num_tables, hashes_per_table, and dim must be positive", ErrInvalidConfig)
	}
	if subHashBits <= 0 || subHashBits*hashesPerTable >= 32 {
		return nil, fmt.Errorf("%w: sub_hash_bits(%d)*hashes_per_table(%d) must be < 32",
			ErrInvalidConfig, subHashBits, hashesPerTable)
	}

	signs := make([]int8, numTables*hashesPerTable*dim)
	for i := range signs {
		if rng.Intn(2) == 0 {
			signs[i] = -1
		} else {
			signs[i] = 1
		}
	}

	return &L2LSH{
		numTables:      numTables,
		hashesPerTable: hashesPerTable,
		dim:            dim,
		subHashBits:    subHashBits,
		cutoff:         cutoff,
		signs:          signs,
	}, nil
}

// NumHashTables returns T.
func (l *L2LSH) NumHashTables() int { return l.numTables }

// Dim returns the vector dimension this L2LSH was built for.
func (l *L2LSH) Dim() int { return l.dim }

// HashRange returns (2^subHashBits)^hashesPerTable.
func (l *L2LSH) HashRange() uint64 {
	return pow(uint64(1)<<uint(l.subHashBits), uint64(l.hashesPerTable))
}

func pow(base, exp uint64) uint64 {
	acc := uint64(1)
	for ; exp > 0; exp-- {
		acc *= base
	}
	return acc
}

// BatchHash hashes numPoints dense points, point-major, in parallel.
func (l *L2LSH) BatchHash(ctx context.Context, points []float32, numPoints int) ([]uint64, error) {
	if numPoints <= 0 || len(points) != numPoints*l.dim {
		return nil, fmt.Errorf("%w: points has %d elements, want numPoints(%d)*dim(%d)",
			ErrInvalidInput, len(points), numPoints, l.dim)
	}

	out := make([]uint64, numPoints*l.numTables)
	var g errgroup.Group
	for p := 0; p < numPoints; p++ {
		p := p
		g.Go(func() error {
			x := points[p*l.dim : (p+1)*l.dim]
			for t := 0; t < l.numTables; t++ {
				out[p*l.numTables+t] = l.hashOne(x, t)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// hashOne quantizes each of hashesPerTable projections to subHashBits bits
// via q = clamp(floor(v + cutoff), 0, 2^subHashBits - 1), per spec, and
// packs them base-(2^subHashBits) with sub-hash k in the k-th digit.
func (l *L2LSH) hashOne(x []float32, table int) uint64 {
	base := table * l.hashesPerTable * l.dim
	maxQ := uint64(1)<<uint(l.subHashBits) - 1
	radix := uint64(1) << uint(l.subHashBits)

	var packed uint64
	for k := 0; k < l.hashesPerTable; k++ {
		row := l.signs[base+k*l.dim : base+k*l.dim+l.dim]
		var dot float64
		for i, v := range x {
			dot += float64(v) * float64(row[i])
		}
		q := int64(math.Floor(dot + float64(l.cutoff)))
		if q < 0 {
			q = 0
		}
		if uint64(q) > maxQ {
			q = int64(maxQ)
		}
		packed += uint64(q) * pow(radix, uint64(k))
	}
	return packed
}

// Distance returns Euclidean distance, the distance function DenseL2
// re-ranks SearchWithDistance results by.
func (l *L2LSH) Distance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
