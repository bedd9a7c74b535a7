package rawstore

import (
	"context"
	"sync"
)

// Memory is the simplest Store: vectors held as-is in a growable slice
// behind a mutex. Fine for indexes small enough to live in RAM uncompressed.
type Memory struct {
	mu     sync.RWMutex
	dim    int
	vecs   [][]float32
	closed bool
}

// NewMemory returns an empty in-memory store for dim-dimensional vectors.
func NewMemory(dim int) *Memory {
	return &Memory{dim: dim}
}

func (m *Memory) Append(_ context.Context, vector []float32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	if len(vector) != m.dim {
		return 0, errDim(m.dim, len(vector))
	}
	id := uint32(len(m.vecs))
	cp := make([]float32, m.dim)
	copy(cp, vector)
	m.vecs = append(m.vecs, cp)
	return id, nil
}

func (m *Memory) Fetch(_ context.Context, id uint32) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if int(id) >= len(m.vecs) {
		return nil, ErrNotFound
	}
	return m.vecs[id], nil
}

func (m *Memory) Len() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.vecs))
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.vecs = nil
	return nil
}
