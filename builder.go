package flinng

import (
	"math/rand"

	"github.com/liliang-cn/flinng/pkg/flinnglog"
	"github.com/liliang-cn/flinng/pkg/index"
)

// Builder carries the shared FlinngIndex sizing knobs plus the hash-family
// knobs a concrete TypedIndex constructor needs. The zero value is not
// usable; start from DefaultBuilder.
type Builder struct {
	// FlinngIndex shape.
	NumRows       uint32
	CellsPerRow   uint32
	NumHashTables int

	// Hash family shape. HashesPerTable applies to all three families;
	// SubHashBits and Cutoff are L2-LSH-only and ignored otherwise.
	HashesPerTable int
	SubHashBits    int
	Cutoff         int

	// Dim is the vector dimension for DenseAngular/DenseL2. Ignored by
	// NewSparse, whose points are token sets.
	Dim int

	// Seed makes hash-family construction and cell assignment
	// reproducible. Zero means seed from the runtime entropy source, except
	// for NewSparse's MinHash, which always uses uint32(Seed) as its seed.
	Seed int64

	Logger flinnglog.Logger
}

// DefaultBuilder returns the parameters the FLINNG paper's reference
// configuration uses for million-scale, hundred-dimensional embeddings:
// 3 rows of 4096 cells, 512 hash tables, 14 sub-hashes per table.
func DefaultBuilder(dim int) Builder {
	return Builder{
		NumRows:        3,
		CellsPerRow:    4096,
		NumHashTables:  512,
		HashesPerTable: 14,
		SubHashBits:    2,
		Cutoff:         6,
		Dim:            dim,
	}
}

func (b Builder) rng() *rand.Rand {
	if b.Seed != 0 {
		return rand.New(rand.NewSource(b.Seed))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

func (b Builder) logger() flinnglog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return flinnglog.Nop()
}

func (b Builder) indexConfig(hashRange uint64) index.Config {
	return index.Config{
		NumRows:       b.NumRows,
		CellsPerRow:   b.CellsPerRow,
		NumHashTables: uint32(b.NumHashTables),
		HashRange:     uint32(hashRange),
	}
}
