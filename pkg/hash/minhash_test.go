package hash

import (
	"context"
	"testing"
)

func TestMinHashRange(t *testing.T) {
	m, err := NewMinHash(4, 3, 6, 1)
	if err != nil {
		t.Fatalf("NewMinHash: %v", err)
	}
	if got, want := m.HashRange(), uint64(64); got != want {
		t.Fatalf("HashRange() = %d, want %d", got, want)
	}
	if m.NumHashTables() != 4 {
		t.Fatalf("NumHashTables() = %d, want 4", m.NumHashTables())
	}
}

func TestMinHashRejectsBadConfig(t *testing.T) {
	if _, err := NewMinHash(0, 3, 6, 1); err == nil {
		t.Fatal("expected error for num_tables=0")
	}
	if _, err := NewMinHash(4, 0, 6, 1); err == nil {
		t.Fatal("expected error for hashes_per_table=0")
	}
	if _, err := NewMinHash(4, 3, 0, 1); err == nil {
		t.Fatal("expected error for hash_range_pow=0")
	}
}

func TestMinHashDeterministicWithSeed(t *testing.T) {
	m1, _ := NewMinHash(3, 2, 8, 17)
	m2, _ := NewMinHash(3, 2, 8, 17)

	points := [][]uint64{
		{10, 20, 30},
		{5, 6, 7, 8, 9},
	}
	h1, err := m1.BatchHashSparse(context.Background(), points)
	if err != nil {
		t.Fatalf("BatchHashSparse 1: %v", err)
	}
	h2, err := m2.BatchHashSparse(context.Background(), points)
	if err != nil {
		t.Fatalf("BatchHashSparse 2: %v", err)
	}
	for i := range h1 {
		if h1[i] != h2[i] {
			t.Fatalf("same-seed hash mismatch at %d: %d vs %d", i, h1[i], h2[i])
		}
	}
}

func TestMinHashIdenticalSetsMatch(t *testing.T) {
	m, _ := NewMinHash(6, 4, 10, 3)
	points := [][]uint64{
		{1, 2, 3, 4, 5},
		{1, 2, 3, 4, 5},
		{100, 200, 300},
	}
	hashes, err := m.BatchHashSparse(context.Background(), points)
	if err != nil {
		t.Fatalf("BatchHashSparse: %v", err)
	}
	numSlots := m.NumHashTables()
	for tbl := 0; tbl < numSlots; tbl++ {
		if hashes[0*numSlots+tbl] != hashes[1*numSlots+tbl] {
			t.Fatalf("identical sets hashed differently at table %d", tbl)
		}
	}
}

func TestMinHashWithinRange(t *testing.T) {
	m, _ := NewMinHash(5, 3, 7, 11)
	points := make([][]uint64, 10)
	for i := range points {
		set := make([]uint64, 5)
		for j := range set {
			set[j] = uint64(i*5 + j)
		}
		points[i] = set
	}
	hashes, err := m.BatchHashSparse(context.Background(), points)
	if err != nil {
		t.Fatalf("BatchHashSparse: %v", err)
	}
	hr := m.HashRange()
	for i, h := range hashes {
		if h >= hr {
			t.Fatalf("hashes[%d] = %d out of range [0,%d)", i, h, hr)
		}
	}
}

func TestMinHashEmptySet(t *testing.T) {
	m, _ := NewMinHash(2, 2, 5, 1)
	hashes, err := m.BatchHashSparse(context.Background(), [][]uint64{{}})
	if err != nil {
		t.Fatalf("BatchHashSparse: %v", err)
	}
	if len(hashes) != m.NumHashTables() {
		t.Fatalf("len(hashes) = %d, want %d", len(hashes), m.NumHashTables())
	}
}
