package flinng

import (
	"errors"
	"fmt"
)

// Sentinel errors of the typed wrappers. Errors from the core index
// (pkg/index), the hash families (pkg/hash) and the raw-vector stores
// (pkg/rawstore) are passed through unchanged and carry those packages' own
// sentinels, not these. Callers should compare with errors.Is.
var (
	// ErrInvalidInput names a hash or vector slice of the wrong shape. No
	// function in this package returns it: shape errors surface as
	// hash.ErrInvalidInput or index.ErrInvalidInput.
	ErrInvalidInput = errors.New("flinng: invalid input shape")

	// ErrHashOutOfRange names a hash value outside [0, H). No function in
	// this package returns it: such values surface as
	// index.ErrHashOutOfRange.
	ErrHashOutOfRange = errors.New("flinng: hash value out of range")

	// ErrInvalidConfig is returned by NewDenseAngular/NewDenseL2 for a
	// non-positive Dim and by NewSparse for hash_range_pow outside [1,32).
	// Hash-family constraints (e.g. sub_hash_bits * hashes_per_table >= 32)
	// surface as hash.ErrInvalidConfig.
	ErrInvalidConfig = errors.New("flinng: invalid configuration")

	// ErrNoRawStore is returned by DenseAngular/DenseL2 SearchWithDistance
	// when no raw-vector store is attached. Sparse.SearchWithDistance does
	// not return it; it skips candidates without a stored token set.
	ErrNoRawStore = errors.New("flinng: no raw-vector store attached")

	// ErrBadMagic is returned by Read when the file does not start with the
	// FLINNG magic number.
	ErrBadMagic = errors.New("flinng: bad magic number")

	// ErrUnsupportedVersion is returned by Read when the on-disk format
	// version is newer than this build understands.
	ErrUnsupportedVersion = errors.New("flinng: unsupported index format version")

	// ErrNotFound names an id with no stored entry. No function in this
	// package returns it: raw-vector stores return rawstore.ErrNotFound.
	ErrNotFound = errors.New("flinng: point not found")

	// ErrDimMismatch is returned when a vector's length does not match the
	// dimension a DenseAngular/DenseL2 index was built for.
	ErrDimMismatch = errors.New("flinng: vector dimension mismatch")
)

// IndexError wraps an error with the operation that produced it.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("flinng: %v", e.Err)
	}
	return fmt.Sprintf("flinng: %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

func (e *IndexError) Is(target error) bool { return errors.Is(e.Err, target) }

// wrapError wraps err with operation context, returning nil if err is nil.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IndexError{Op: op, Err: err}
}
