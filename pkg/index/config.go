// Package index implements the FLINNG inverted cell index: the core
// structure that maps LSH hash values to randomly scattered cell ids and
// back to point ids, and the top-K strike-count aggregation query over it.
package index

import "fmt"

// Config holds the four parameters that fix a FlinngIndex's shape for its
// entire lifetime. None of them can change after New.
type Config struct {
	// NumRows (R) is the number of independent random cell groups a point
	// is scattered into.
	NumRows uint32
	// CellsPerRow (B) is the cell count in each row.
	CellsPerRow uint32
	// NumHashTables (T) is the number of LSH hash values carried per point.
	NumHashTables uint32
	// HashRange (H) is the size of the value space of each hash, i.e. every
	// hash value must lie in [0, HashRange).
	HashRange uint32
}

// Validate checks that every field is within the domain the index requires.
// NumRows == 1 is accepted: the qualification rule has a dedicated one-shot
// path for it (see the regime documentation on qualifyScratch in
// scratch.go), it is not rejected
// wholesale as the upstream source's bit-packed scratch would otherwise
// require.
func (c Config) Validate() error {
	if c.NumRows == 0 {
		return fmt.Errorf("%w: num_rows must be >= 1", ErrInvalidConfig)
	}
	if c.CellsPerRow == 0 {
		return fmt.Errorf("%w: cells_per_row must be >= 1", ErrInvalidConfig)
	}
	if c.NumHashTables == 0 {
		return fmt.Errorf("%w: num_hash_tables must be >= 1", ErrInvalidConfig)
	}
	if c.HashRange == 0 {
		return fmt.Errorf("%w: hash_range must be >= 1", ErrInvalidConfig)
	}
	return nil
}

// TotalCells returns R * B, the size of the cell-membership table.
func (c Config) TotalCells() uint64 {
	return uint64(c.NumRows) * uint64(c.CellsPerRow)
}

// NumBuckets returns T * H, the size of the inverted index.
func (c Config) NumBuckets() uint64 {
	return uint64(c.NumHashTables) * uint64(c.HashRange)
}
