package flinng

import (
	"context"
	"path/filepath"
	"testing"
)

func smallSparseBuilder() Builder {
	b := DefaultBuilder(0)
	b.NumRows = 3
	b.CellsPerRow = 64
	b.NumHashTables = 16
	b.HashesPerTable = 4
	b.Seed = 17
	return b
}

func TestSparseRejectsBadHashRangePow(t *testing.T) {
	if _, err := NewSparse(smallSparseBuilder(), 0); err == nil {
		t.Fatal("expected error for hash_range_pow=0")
	}
	if _, err := NewSparse(smallSparseBuilder(), 32); err == nil {
		t.Fatal("expected error for hash_range_pow=32")
	}
}

func TestSparseSelfMatch(t *testing.T) {
	idx, err := NewSparse(smallSparseBuilder(), 20)
	if err != nil {
		t.Fatalf("NewSparse: %v", err)
	}

	sets := [][]uint64{
		{1, 2, 3, 4, 5},
		{100, 200, 300},
		{1, 2, 3, 4, 6},
		{7, 8, 9},
	}
	ctx := context.Background()
	if err := idx.AddPoints(ctx, sets); err != nil {
		t.Fatalf("AddPoints: %v", err)
	}
	idx.PrepareForQueries()

	results, err := idx.Query(ctx, sets[0], 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 || results[0] != 0 {
		t.Fatalf("results = %v, want [0]", results)
	}
}

func TestSparseAddAndStoreSearchWithDistance(t *testing.T) {
	idx, err := NewSparse(smallSparseBuilder(), 20)
	if err != nil {
		t.Fatalf("NewSparse: %v", err)
	}

	ctx := context.Background()
	sets := [][]uint64{
		{1, 2, 3, 4, 5},
		{500, 501, 502},
		{1, 2, 3, 4, 5, 6},
	}
	for _, s := range sets {
		if _, err := idx.AddAndStore(ctx, s); err != nil {
			t.Fatalf("AddAndStore: %v", err)
		}
	}
	idx.PrepareForQueries()

	results, err := idx.SearchWithDistance(ctx, sets[0], 3)
	if err != nil {
		t.Fatalf("SearchWithDistance: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ID != 0 {
		t.Fatalf("closest match id = %d, want 0", results[0].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("results not sorted ascending by distance: %v", results)
		}
	}
}

func TestJaccardDistance(t *testing.T) {
	a := map[uint64]struct{}{1: {}, 2: {}, 3: {}}
	b := []uint64{1, 2, 4}
	// intersection {1,2} = 2, union {1,2,3,4} = 4
	got := jaccardDistance(a, b)
	want := float32(1) - float32(2)/float32(4)
	if got != want {
		t.Fatalf("jaccardDistance = %v, want %v", got, want)
	}
}

func TestJaccardDistanceBothEmpty(t *testing.T) {
	got := jaccardDistance(map[uint64]struct{}{}, nil)
	if got != 0 {
		t.Fatalf("jaccardDistance(empty, empty) = %v, want 0", got)
	}
}

func TestSparseSerializationRoundTrip(t *testing.T) {
	idx, err := NewSparse(smallSparseBuilder(), 20)
	if err != nil {
		t.Fatalf("NewSparse: %v", err)
	}

	ctx := context.Background()
	sets := [][]uint64{
		{1, 2, 3},
		{4, 5, 6},
		{1, 2, 3, 7},
		{8, 9, 10},
	}
	if err := idx.AddPoints(ctx, sets); err != nil {
		t.Fatalf("AddPoints: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sparse.bin")
	if err := idx.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	restored, err := ReadSparse(path)
	if err != nil {
		t.Fatalf("ReadSparse: %v", err)
	}

	want, err := idx.Query(ctx, sets[0], 2)
	if err != nil {
		t.Fatalf("Query original: %v", err)
	}
	got, err := restored.Query(ctx, sets[0], 2)
	if err != nil {
		t.Fatalf("Query restored: %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("result mismatch at %d: %d vs %d", i, want[i], got[i])
		}
	}
}

func TestSparseWrongTypeTagRejected(t *testing.T) {
	angular, err := NewDenseAngular(smallAngularBuilder(4))
	if err != nil {
		t.Fatalf("NewDenseAngular: %v", err)
	}
	if err := angular.AddPoints(context.Background(), make([]float32, 4), 1); err != nil {
		t.Fatalf("AddPoints: %v", err)
	}

	path := filepath.Join(t.TempDir(), "angular.bin")
	if err := angular.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := ReadSparse(path); err == nil {
		t.Fatal("expected error reading an angular file as Sparse")
	}
}
