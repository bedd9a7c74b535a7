package hash

import (
	"context"
	"math/rand"
	"testing"
)

func TestL2LSHHashRange(t *testing.T) {
	l, err := NewL2LSH(3, 5, 16, 2, 6, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewL2LSH: %v", err)
	}
	want := pow(4, 5)
	if got := l.HashRange(); got != want {
		t.Fatalf("HashRange() = %d, want %d", got, want)
	}
}

func TestL2LSHRejectsOverflowingConfig(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewL2LSH(2, 16, 8, 2, 6, rng); err == nil {
		t.Fatal("expected error: sub_hash_bits*hashes_per_table >= 32")
	}
}

func TestL2LSHDeterministicWithSeed(t *testing.T) {
	dim := 10
	pts := make([]float32, dim*3)
	for i := range pts {
		pts[i] = float32(i%7) - 3
	}

	l1, _ := NewL2LSH(4, 4, dim, 2, 6, rand.New(rand.NewSource(42)))
	l2, _ := NewL2LSH(4, 4, dim, 2, 6, rand.New(rand.NewSource(42)))

	h1, err := l1.BatchHash(context.Background(), pts, 3)
	if err != nil {
		t.Fatalf("BatchHash 1: %v", err)
	}
	h2, err := l2.BatchHash(context.Background(), pts, 3)
	if err != nil {
		t.Fatalf("BatchHash 2: %v", err)
	}
	for i := range h1 {
		if h1[i] != h2[i] {
			t.Fatalf("same-seed hash mismatch at %d: %d vs %d", i, h1[i], h2[i])
		}
	}
}

func TestL2LSHHashesWithinRange(t *testing.T) {
	dim := 12
	l, _ := NewL2LSH(5, 4, dim, 3, 8, rand.New(rand.NewSource(3)))
	n := 20
	pts := make([]float32, dim*n)
	rng := rand.New(rand.NewSource(5))
	for i := range pts {
		pts[i] = rng.Float32()*10 - 5
	}
	hashes, err := l.BatchHash(context.Background(), pts, n)
	if err != nil {
		t.Fatalf("BatchHash: %v", err)
	}
	hr := l.HashRange()
	for i, h := range hashes {
		if h >= hr {
			t.Fatalf("hashes[%d] = %d out of range [0,%d)", i, h, hr)
		}
	}
}

func TestL2LSHDistanceIdenticalIsZero(t *testing.T) {
	l := &L2LSH{}
	a := []float32{1, 2, 3}
	if d := l.Distance(a, a); d != 0 {
		t.Fatalf("Distance(a,a) = %v, want 0", d)
	}
}

func TestPowHelper(t *testing.T) {
	cases := []struct{ base, exp, want uint64 }{
		{2, 0, 1},
		{2, 10, 1024},
		{4, 5, 1024},
	}
	for _, c := range cases {
		if got := pow(c.base, c.exp); got != c.want {
			t.Errorf("pow(%d,%d) = %d, want %d", c.base, c.exp, got, c.want)
		}
	}
}
