package rawstore

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func testStoreRoundTrip(t *testing.T, s Store, dim int) {
	t.Helper()
	ctx := context.Background()
	vecs := [][]float32{
		{1, 2, 3, 4},
		{-5, 0, 5, 10},
		{0.1, 0.2, 0.3, 0.4},
	}

	ids := make([]uint32, len(vecs))
	for i, v := range vecs {
		id, err := s.Append(ctx, v)
		if err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
		if id != uint32(i) {
			t.Fatalf("Append(%d) returned id %d, want %d", i, id, i)
		}
		ids[i] = id
	}

	if got := s.Len(); got != uint64(len(vecs)) {
		t.Fatalf("Len() = %d, want %d", got, len(vecs))
	}

	for i, id := range ids {
		got, err := s.Fetch(ctx, id)
		if err != nil {
			t.Fatalf("Fetch(%d): %v", id, err)
		}
		if len(got) != dim {
			t.Fatalf("Fetch(%d) len = %d, want %d", id, len(got), dim)
		}
		_ = i
	}

	if _, err := s.Fetch(ctx, 999); err != ErrNotFound {
		t.Fatalf("Fetch(999) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory(4)
	testStoreRoundTrip(t, s, 4)

	got, err := s.Fetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []float32{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Memory.Fetch exact-value mismatch at %d: got %v want %v", i, got[i], want[i])
		}
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.Append(context.Background(), []float32{1, 2, 3, 4}); err != ErrClosed {
		t.Fatalf("Append after Close = %v, want ErrClosed", err)
	}
}

func TestQuantizedStore(t *testing.T) {
	s := NewQuantized(4)
	testStoreRoundTrip(t, s, 4)

	got, err := s.Fetch(context.Background(), 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []float32{1, 2, 3, 4}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 0.1 {
			t.Fatalf("Quantized.Fetch value too far off at %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.db")
	s, err := OpenSQLite(ctx, path, 4)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	testStoreRoundTrip(t, s, 4)

	got, err := s.Fetch(ctx, 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []float32{-5, 0, 5, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SQLite.Fetch exact-value mismatch at %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.db")

	s1, err := OpenSQLite(ctx, path, 3)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := s1.Append(ctx, []float32{1, 2, 3}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := OpenSQLite(ctx, path, 3)
	if err != nil {
		t.Fatalf("reopen OpenSQLite: %v", err)
	}
	defer s2.Close()
	if got := s2.Len(); got != 1 {
		t.Fatalf("Len() after reopen = %d, want 1", got)
	}
	// New appends continue the id sequence rather than restarting at 0.
	id, err := s2.Append(ctx, []float32{4, 5, 6})
	if err != nil {
		t.Fatalf("Append after reopen: %v", err)
	}
	if id != 1 {
		t.Fatalf("Append after reopen returned id %d, want 1", id)
	}
}
