package index

import "errors"

// Sentinel errors returned by FlinngIndex. The root flinng package's
// wrappers surface these unchanged via errors.Is.
var (
	// ErrInvalidConfig is returned by New when R, B, T, or H is zero. Hash
	// family constructors report their own hash.ErrInvalidConfig instead.
	ErrInvalidConfig = errors.New("index: invalid configuration")

	// ErrInvalidInput is returned when a hash slice's length is not a
	// multiple of NumHashTables.
	ErrInvalidInput = errors.New("index: invalid input shape")

	// ErrHashOutOfRange is returned when a hash value is outside [0, H).
	ErrHashOutOfRange = errors.New("index: hash value out of range")

	// ErrBadMagic is returned by Read when the file does not start with the
	// FLINNG magic number.
	ErrBadMagic = errors.New("index: bad magic number")

	// ErrUnsupportedVersion is returned by Read when the on-disk format
	// version is newer than this build understands.
	ErrUnsupportedVersion = errors.New("index: unsupported format version")
)
