package flinng

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/liliang-cn/flinng/pkg/hash"
	"github.com/liliang-cn/flinng/pkg/index"
)

// Wrapper format: magic, format version, type tag, then the hash family's
// own section followed by the FlinngIndex core section. Atomic
// write follows the same temp-file-then-rename scheme as pkg/index.
const (
	wrapperMagic   uint32 = 0x464c4e57 // "FLNW"
	wrapperVersion uint32 = 1

	tagDenseAngular uint32 = 1
	tagDenseL2      uint32 = 2
	tagSparse       uint32 = 3
)

func writeWrapperHeader(w io.Writer, tag uint32) error {
	if err := writeU32(w, wrapperMagic); err != nil {
		return err
	}
	if err := writeU32(w, wrapperVersion); err != nil {
		return err
	}
	return writeU32(w, tag)
}

func readWrapperHeader(r io.Reader, wantTag uint32) error {
	m, err := readU32(r)
	if err != nil {
		return err
	}
	if m != wrapperMagic {
		return ErrBadMagic
	}
	v, err := readU32(r)
	if err != nil {
		return err
	}
	if v != wrapperVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, v, wrapperVersion)
	}
	tag, err := readU32(r)
	if err != nil {
		return err
	}
	if tag != wantTag {
		return fmt.Errorf("flinng: file holds type tag %d, not %d", tag, wantTag)
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func atomicWrite(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("flinng: write %s: %w", path, err)
	}
	defer os.Remove(tmp)

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("flinng: write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flinng: write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("flinng: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("flinng: write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

// Write snapshots the index (hash family and FlinngIndex core) to path.
// The attached raw-vector store, if any, is not included and must be
// persisted separately by the caller.
func (d *DenseAngular) Write(path string) error {
	return atomicWrite(path, func(w io.Writer) error {
		if err := writeWrapperHeader(w, tagDenseAngular); err != nil {
			return err
		}
		if err := d.srp.EncodeTo(w); err != nil {
			return err
		}
		return d.idx.EncodeTo(w)
	})
}

// ReadDenseAngular restores an index previously written by Write.
func ReadDenseAngular(path string) (*DenseAngular, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	defer f.Close()

	if err := readWrapperHeader(f, tagDenseAngular); err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	srp, err := hash.DecodeSRP(f)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	idx, err := index.DecodeFrom(f)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	return &DenseAngular{base: base{idx: idx, dim: srp.Dim()}, srp: srp}, nil
}

// Write snapshots the index to path.
func (d *DenseL2) Write(path string) error {
	return atomicWrite(path, func(w io.Writer) error {
		if err := writeWrapperHeader(w, tagDenseL2); err != nil {
			return err
		}
		if err := d.l2.EncodeTo(w); err != nil {
			return err
		}
		return d.idx.EncodeTo(w)
	})
}

// ReadDenseL2 restores an index previously written by Write.
func ReadDenseL2(path string) (*DenseL2, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	defer f.Close()

	if err := readWrapperHeader(f, tagDenseL2); err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	l2, err := hash.DecodeL2LSH(f)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	idx, err := index.DecodeFrom(f)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	return &DenseL2{base: base{idx: idx, dim: l2.Dim()}, l2: l2}, nil
}

// Write snapshots the index to path.
func (s *Sparse) Write(path string) error {
	return atomicWrite(path, func(w io.Writer) error {
		if err := writeWrapperHeader(w, tagSparse); err != nil {
			return err
		}
		if err := s.mh.EncodeTo(w); err != nil {
			return err
		}
		return s.idx.EncodeTo(w)
	})
}

// ReadSparse restores an index previously written by Write. Token sets
// kept by AddAndStore are not persisted; SearchWithDistance on a restored
// index returns ErrNoRawStore-equivalent empty results until re-populated.
func ReadSparse(path string) (*Sparse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	defer f.Close()

	if err := readWrapperHeader(f, tagSparse); err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	mh, err := hash.DecodeMinHash(f)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	idx, err := index.DecodeFrom(f)
	if err != nil {
		return nil, fmt.Errorf("flinng: read %s: %w", path, err)
	}
	return &Sparse{idx: idx, mh: mh}, nil
}
