// Package hash implements the three FLINNG LSH hash families: Signed
// Random Projection (cosine), L2-LSH (Euclidean), and Densified MinHash
// (Jaccard over sparse token sets). All three share the contract that
// BatchHash/BatchHashSparse emits a point-major, flat []uint64 stream of
// NumHashTables() values per point, each in [0, HashRange()), ready to
// feed straight into index.FlinngIndex.AddPoints / Query.
package hash

import "errors"

var (
	// ErrInvalidConfig is returned by a constructor when a parameter
	// combination would overflow the packed hash width or is otherwise
	// out of domain (e.g. hashes_per_table >= 32 for SRP).
	ErrInvalidConfig = errors.New("hash: invalid configuration")

	// ErrInvalidInput is returned when a batch's shape does not match the
	// hash family's fixed dimension.
	ErrInvalidInput = errors.New("hash: invalid input shape")
)
