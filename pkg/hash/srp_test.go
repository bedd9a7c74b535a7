package hash

import (
	"context"
	"math/rand"
	"testing"
)

func TestSRPHashRange(t *testing.T) {
	s, err := NewSRP(4, 6, 16, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewSRP: %v", err)
	}
	if got, want := s.HashRange(), uint64(1)<<6; got != want {
		t.Fatalf("HashRange() = %d, want %d", got, want)
	}
	if s.NumHashTables() != 4 {
		t.Fatalf("NumHashTables() = %d, want 4", s.NumHashTables())
	}
}

func TestSRPRejectsBadConfig(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewSRP(0, 6, 16, rng); err == nil {
		t.Fatal("expected error for num_tables=0")
	}
	if _, err := NewSRP(4, 32, 16, rng); err == nil {
		t.Fatal("expected error for hashes_per_table=32")
	}
}

func TestSRPDeterministicWithSeed(t *testing.T) {
	dim := 8
	pts := make([]float32, dim*2)
	for i := range pts {
		pts[i] = float32(i) - 4
	}

	s1, _ := NewSRP(4, 5, dim, rand.New(rand.NewSource(99)))
	s2, _ := NewSRP(4, 5, dim, rand.New(rand.NewSource(99)))

	h1, err := s1.BatchHash(context.Background(), pts, 2)
	if err != nil {
		t.Fatalf("BatchHash 1: %v", err)
	}
	h2, err := s2.BatchHash(context.Background(), pts, 2)
	if err != nil {
		t.Fatalf("BatchHash 2: %v", err)
	}
	for i := range h1 {
		if h1[i] != h2[i] {
			t.Fatalf("same-seed hash mismatch at %d: %d vs %d", i, h1[i], h2[i])
		}
	}
}

func TestSRPBatchHashRejectsBadShape(t *testing.T) {
	s, _ := NewSRP(2, 4, 8, rand.New(rand.NewSource(1)))
	if _, err := s.BatchHash(context.Background(), make([]float32, 7), 1); err == nil {
		t.Fatal("expected error for mismatched point length")
	}
}

func TestSRPHashesWithinRange(t *testing.T) {
	dim := 12
	s, _ := NewSRP(5, 7, dim, rand.New(rand.NewSource(3)))
	n := 30
	pts := make([]float32, dim*n)
	rng := rand.New(rand.NewSource(5))
	for i := range pts {
		pts[i] = rng.Float32()*2 - 1
	}
	hashes, err := s.BatchHash(context.Background(), pts, n)
	if err != nil {
		t.Fatalf("BatchHash: %v", err)
	}
	hr := s.HashRange()
	for i, h := range hashes {
		if h >= hr {
			t.Fatalf("hashes[%d] = %d out of range [0,%d)", i, h, hr)
		}
	}
}

func TestSRPDistanceIdenticalIsZero(t *testing.T) {
	s := &SRP{}
	a := []float32{1, 2, 3}
	if d := s.Distance(a, a); d > 1e-6 {
		t.Fatalf("Distance(a,a) = %v, want ~0", d)
	}
}

func TestSRPDistanceZeroVector(t *testing.T) {
	s := &SRP{}
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	if d := s.Distance(a, b); d != 1 {
		t.Fatalf("Distance with zero vector = %v, want 1", d)
	}
}
