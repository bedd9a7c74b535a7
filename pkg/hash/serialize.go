package hash

import (
	"encoding/binary"
	"fmt"
	"io"
)

func writeInts(w io.Writer, vals ...int) error {
	for _, v := range vals {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func readInts(r io.Reader, n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		out[i] = int(int64(binary.LittleEndian.Uint64(buf[:])))
	}
	return out, nil
}

// EncodeTo writes the SRP sign matrix and its shape, so the exact hash
// family that produced an index's hashes can be restored alongside it.
func (s *SRP) EncodeTo(w io.Writer) error {
	if err := writeInts(w, s.numTables, s.hashesPerTable, s.dim); err != nil {
		return err
	}
	for _, v := range s.signs {
		if _, err := w.Write([]byte{byte(v)}); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSRP restores an SRP previously written by EncodeTo.
func DecodeSRP(r io.Reader) (*SRP, error) {
	shape, err := readInts(r, 3)
	if err != nil {
		return nil, fmt.Errorf("hash: decode SRP shape: %w", err)
	}
	s := &SRP{numTables: shape[0], hashesPerTable: shape[1], dim: shape[2]}
	n := s.numTables * s.hashesPerTable * s.dim
	s.signs = make([]int8, n)
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("hash: decode SRP signs: %w", err)
	}
	for i, b := range buf {
		s.signs[i] = int8(b)
	}
	return s, nil
}

// EncodeTo writes the L2LSH sign matrix, shape, and quantization
// parameters.
func (l *L2LSH) EncodeTo(w io.Writer) error {
	if err := writeInts(w, l.numTables, l.hashesPerTable, l.dim, l.subHashBits, l.cutoff); err != nil {
		return err
	}
	for _, v := range l.signs {
		if _, err := w.Write([]byte{byte(v)}); err != nil {
			return err
		}
	}
	return nil
}

// DecodeL2LSH restores an L2LSH previously written by EncodeTo.
func DecodeL2LSH(r io.Reader) (*L2LSH, error) {
	shape, err := readInts(r, 5)
	if err != nil {
		return nil, fmt.Errorf("hash: decode L2LSH shape: %w", err)
	}
	l := &L2LSH{
		numTables:      shape[0],
		hashesPerTable: shape[1],
		dim:            shape[2],
		subHashBits:    shape[3],
		cutoff:         shape[4],
	}
	n := l.numTables * l.hashesPerTable * l.dim
	l.signs = make([]int8, n)
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("hash: decode L2LSH signs: %w", err)
	}
	for i, b := range buf {
		l.signs[i] = int8(b)
	}
	return l, nil
}

// EncodeTo writes the MinHash's shape and seed; it holds no matrix state.
func (m *MinHash) EncodeTo(w io.Writer) error {
	return writeInts(w, m.numTables, m.hashesPerTable, m.hashRangePow, int(m.seed))
}

// DecodeMinHash restores a MinHash previously written by EncodeTo.
func DecodeMinHash(r io.Reader) (*MinHash, error) {
	shape, err := readInts(r, 4)
	if err != nil {
		return nil, fmt.Errorf("hash: decode MinHash shape: %w", err)
	}
	return &MinHash{
		numTables:      shape[0],
		hashesPerTable: shape[1],
		hashRangePow:   shape[2],
		seed:           uint32(shape[3]),
	}, nil
}
