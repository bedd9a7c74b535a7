package hash

import (
	"context"
	"encoding/binary"
	"fmt"

	farm "github.com/dgryski/go-farm"
	"golang.org/x/sync/errgroup"
)

// MinHash is Densified MinHash: an LSH family for Jaccard similarity over
// sparse sets of uint64 token ids. NumTables*HashesPerTable minhash slots
// are computed per point; slots no token landed in are densified —
// deterministically filled from a nearby populated slot — so they don't
// contribute the zero-probability collision mass an empty slot otherwise
// would. The fast seeded mixing underneath (combine) is farmhash, the same
// family github.com/grailbio/bio uses to shard its k-mer index
// (fusion/kmer_index.go) for fast, well-distributed fixed-width integer
// keys.
type MinHash struct {
	numTables      int
	hashesPerTable int
	hashRangePow   int
	seed           uint32
}

// NewMinHash builds a MinHash family with numTables*hashesPerTable total
// slots, packing hashesPerTable slots per table into a value masked to
// hashRangePow bits. seed drives every table's permutation deterministically
// — re-running with the same seed reproduces the same hash stream.
func NewMinHash(numTables, hashesPerTable, hashRangePow int, seed uint32) (*MinHash, error) {
	if numTables <= 0 || hashesPerTable <= 0 {
		return nil, fmt.Errorf("%w: num_tables and hashes_per_table must be positive", ErrInvalidConfig)
	}
	if hashRangePow <= 0 || hashRangePow > 63 {
		return nil, fmt.Errorf("%w: hash_range_pow must be in [1,63]", ErrInvalidConfig)
	}
	return &MinHash{
		numTables:      numTables,
		hashesPerTable: hashesPerTable,
		hashRangePow:   hashRangePow,
		seed:           seed,
	}, nil
}

// NumHashTables returns T.
func (m *MinHash) NumHashTables() int { return m.numTables }

// HashRange returns 2^hashRangePow.
func (m *MinHash) HashRange() uint64 { return uint64(1) << uint(m.hashRangePow) }

// combine mixes two 64-bit values into one via a seeded farmhash over a.
func combine(a, b uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], a)
	return farm.Hash64WithSeed(buf[:], b)
}

// BatchHashSparse hashes each point (a set of token ids) independently and
// in parallel, returning a flat, point-major []uint64 of numTables values
// per point, each packing hashesPerTable densified slots.
func (m *MinHash) BatchHashSparse(ctx context.Context, points [][]uint64) ([]uint64, error) {
	out := make([]uint64, len(points)*m.numTables)

	var g errgroup.Group
	for p := range points {
		p := p
		g.Go(func() error {
			slots := m.densifiedSlots(points[p])
			mask := m.HashRange() - 1
			for t := 0; t < m.numTables; t++ {
				var h uint64
				for k := 0; k < m.hashesPerTable; k++ {
					h = combine(h, slots[t*m.hashesPerTable+k])
				}
				out[p*m.numTables+t] = h & mask
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// densifiedSlots assigns every token in tokens to one of numTables*K bins
// by a seeded hash, keeps the minimum per-bin value, then fills every empty
// bin by scanning forward (wrapping) for the nearest populated neighbor and
// re-mixing its value with the gap distance, so no two empty bins collapse
// to literally the same value.
func (m *MinHash) densifiedSlots(tokens []uint64) []uint64 {
	numSlots := m.numTables * m.hashesPerTable
	values := make([]uint64, numSlots)
	occupied := make([]bool, numSlots)

	for i := range values {
		values[i] = ^uint64(0)
	}

	for _, tok := range tokens {
		mixed := combine(tok, uint64(m.seed))
		bin := int(mixed % uint64(numSlots))
		v := combine(tok, uint64(m.seed)+1)
		if !occupied[bin] || v < values[bin] {
			values[bin] = v
			occupied[bin] = true
		}
	}

	for i := 0; i < numSlots; i++ {
		if occupied[i] {
			continue
		}
		for step := 1; step <= numSlots; step++ {
			j := (i + step) % numSlots
			if occupied[j] {
				values[i] = combine(values[j], uint64(step))
				break
			}
		}
	}

	return values
}
