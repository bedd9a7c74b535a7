package index

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/liliang-cn/flinng/pkg/flinnglog"
)

// Unfilled is the sentinel value used for result slots that have no
// qualifying point. It deliberately cannot collide with a real point id,
// since point ids are dense starting at 0 and never reach the uint32 max
// (the aggregation path is specified as 32-bit throughout).
const Unfilled = ^uint32(0)

// FlinngIndex is the inverted cell index at the core of FLINNG: a mapping
// from (hash-table, hash-value) buckets to the cell ids that collided there,
// and a reverse mapping from cells to the point ids scattered into them.
//
// AddPoints and Query must not be called concurrently on the same index;
// the mutex below guards against accidental concurrent misuse, it does not
// make the two operations safe to interleave.
type FlinngIndex struct {
	mu sync.RWMutex

	cfg Config

	// buckets has length T*H. buckets[t*H+h] holds the sorted, deduplicated
	// cell ids that some point's row occupied when hash t equalled h.
	buckets [][]uint32

	// cells has length R*B. cells[c] holds the (insertion-ordered) point
	// ids scattered into cell c.
	cells [][]uint32

	totalPoints uint64
	prepared    bool

	rng    *rand.Rand
	logger flinnglog.Logger
}

// Option configures a FlinngIndex at construction time.
type Option func(*FlinngIndex)

// WithRand threads an explicit random source through construction, per the
// reproducibility requirement in the design notes: the index never touches
// the global math/rand generator.
func WithRand(rng *rand.Rand) Option {
	return func(x *FlinngIndex) { x.rng = rng }
}

// WithSeed is a convenience over WithRand for the common case of wanting a
// deterministic but index-private generator.
func WithSeed(seed int64) Option {
	return func(x *FlinngIndex) { x.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(l flinnglog.Logger) Option {
	return func(x *FlinngIndex) { x.logger = l }
}

// New allocates an empty FlinngIndex with the given shape. Buckets and cell
// lists start empty and are never resized except by Read.
func New(cfg Config, opts ...Option) (*FlinngIndex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, wrapErr("new", err)
	}

	x := &FlinngIndex{
		cfg:     cfg,
		buckets: make([][]uint32, cfg.NumBuckets()),
		cells:   make([][]uint32, cfg.TotalCells()),
		logger:  flinnglog.Nop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.rng == nil {
		x.rng = rand.New(rand.NewSource(1))
	}
	return x, nil
}

// Config returns the index's immutable shape.
func (x *FlinngIndex) Config() Config {
	return x.cfg
}

// NumPointsAdded returns the number of points inserted across every
// AddPoints call so far.
func (x *FlinngIndex) NumPointsAdded() uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.totalPoints
}

// AddPoints ingests hashes, a flat, point-major sequence of
// numPoints*NumHashTables values each in [0, HashRange). Point ids
// [totalPointsAdded, totalPointsAdded+numPoints) are assigned to the
// batch in order. PrepareForQueries is called automatically before
// AddPoints returns.
func (x *FlinngIndex) AddPoints(ctx context.Context, hashes []uint64) error {
	T := int(x.cfg.NumHashTables)
	if len(hashes) == 0 || len(hashes)%T != 0 {
		return wrapErr("add_points", fmt.Errorf("%w: len(hashes)=%d is not a positive multiple of num_hash_tables=%d",
			ErrInvalidInput, len(hashes), T))
	}
	for _, h := range hashes {
		if h >= uint64(x.cfg.HashRange) {
			return wrapErr("add_points", fmt.Errorf("%w: value %d >= hash_range %d", ErrHashOutOfRange, h, x.cfg.HashRange))
		}
	}
	numPoints := len(hashes) / T

	x.mu.Lock()
	defer x.mu.Unlock()

	R := int(x.cfg.NumRows)
	B := x.cfg.CellsPerRow
	H := int(x.cfg.HashRange)

	// Step 2: draw R cell ids per point. Sequential: a single shared RNG
	// cannot be drawn from concurrently.
	cellOf := make([]uint32, numPoints*R)
	for p := 0; p < numPoints; p++ {
		for r := 0; r < R; r++ {
			cellOf[p*R+r] = uint32(x.rng.Intn(int(B))) + uint32(r)*B
		}
	}

	// Step 3: append to buckets, parallel across hash tables. Distinct t
	// values touch disjoint ranges of buckets, so no locking is needed
	// across goroutines here.
	var g errgroup.Group
	for t := 0; t < T; t++ {
		t := t
		g.Go(func() error {
			base := t * H
			for p := 0; p < numPoints; p++ {
				h := int(hashes[p*T+t])
				bucketIdx := base + h
				for r := 0; r < R; r++ {
					x.buckets[bucketIdx] = append(x.buckets[bucketIdx], cellOf[p*R+r])
				}
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines above never return an error

	// Step 4: cell-membership append, serial: all rows share x.cells.
	firstID := x.totalPoints
	for p := 0; p < numPoints; p++ {
		pid := uint32(firstID) + uint32(p)
		for r := 0; r < R; r++ {
			c := cellOf[p*R+r]
			x.cells[c] = append(x.cells[c], pid)
		}
	}

	x.totalPoints += uint64(numPoints)
	x.logger.AddedPoints(numPoints, x.totalPoints)

	x.prepareForQueriesLocked()
	return nil
}

// PrepareForQueries sorts and deduplicates every bucket. It is idempotent
// and is already called at the end of AddPoints and by Read/DecodeFrom, so
// an index built or loaded through those needs no further call.
func (x *FlinngIndex) PrepareForQueries() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.prepareForQueriesLocked()
}

func (x *FlinngIndex) prepareForQueriesLocked() {
	var g errgroup.Group
	for i := range x.buckets {
		i := i
		g.Go(func() error {
			b := x.buckets[i]
			if len(b) < 2 {
				return nil
			}
			sort.Slice(b, func(a, c int) bool { return b[a] < b[c] })
			x.buckets[i] = dedupSorted(b)
			return nil
		})
	}
	_ = g.Wait()
	x.prepared = true
	x.logger.PreparedBuckets(len(x.buckets))
}

func dedupSorted(s []uint32) []uint32 {
	out := s[:1]
	for i := 1; i < len(s); i++ {
		if s[i] != out[len(out)-1] {
			out = append(out, s[i])
		}
	}
	return out
}

// Query answers numQueries = len(hashes)/NumHashTables independent
// lookups, each against the same flat, point-major hash layout as
// AddPoints. Results for query q occupy [q*topK, (q+1)*topK) of the
// returned slice, ordered by descending strike count with ties broken by
// cell-id then membership-insertion order. Unfilled result slots hold
// Unfilled, never 0.
func (x *FlinngIndex) Query(ctx context.Context, hashes []uint64, topK uint32) ([]uint32, error) {
	T := int(x.cfg.NumHashTables)
	if len(hashes) == 0 || len(hashes)%T != 0 {
		return nil, wrapErr("query", fmt.Errorf("%w: len(hashes)=%d is not a positive multiple of num_hash_tables=%d",
			ErrInvalidInput, len(hashes), T))
	}
	for _, h := range hashes {
		if h >= uint64(x.cfg.HashRange) {
			return nil, wrapErr("query", fmt.Errorf("%w: value %d >= hash_range %d", ErrHashOutOfRange, h, x.cfg.HashRange))
		}
	}
	numQueries := len(hashes) / T

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]uint32, numQueries*int(topK))

	var g errgroup.Group
	for q := 0; q < numQueries; q++ {
		q := q
		g.Go(func() error {
			out := results[q*int(topK) : (q+1)*int(topK)]
			x.queryOneLocked(hashes[q*T:(q+1)*T], topK, out)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// queryOneLocked answers a single query. Caller must hold at least x.mu.RLock.
func (x *FlinngIndex) queryOneLocked(hashes []uint64, topK uint32, out []uint32) {
	for i := range out {
		out[i] = Unfilled
	}

	T := int(x.cfg.NumHashTables)
	H := int(x.cfg.HashRange)
	totalCells := x.cfg.TotalCells()

	counts := make([]uint32, totalCells)
	for t := 0; t < T; t++ {
		h := int(hashes[t])
		bucket := x.buckets[t*H+h]
		for _, c := range bucket {
			counts[c]++
		}
	}

	// Bucket-sort cells by strike count; within a level, cells are
	// appended in ascending id order by construction.
	sorted := make([][]uint32, T+1)
	for c, cnt := range counts {
		sorted[cnt] = append(sorted[cnt], uint32(c))
	}

	scr := newQualifyScratch(x.cfg.NumRows, x.totalPoints)
	emitted := 0

	for k := T; k >= 0 && emitted < len(out); k-- {
		for _, c := range sorted[k] {
			for _, p := range x.cells[c] {
				if scr.strike(p) {
					out[emitted] = p
					emitted++
					if emitted == len(out) {
						return
					}
				}
			}
		}
	}
}

// Stats reports a snapshot of index occupancy, in the teacher's idiom of a
// loosely typed diagnostics map rather than a dedicated exported struct.
func (x *FlinngIndex) Stats() map[string]any {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var bucketEntries, maxBucket int
	for _, b := range x.buckets {
		bucketEntries += len(b)
		if len(b) > maxBucket {
			maxBucket = len(b)
		}
	}
	var cellEntries, maxCell int
	for _, c := range x.cells {
		cellEntries += len(c)
		if len(c) > maxCell {
			maxCell = len(c)
		}
	}

	return map[string]any{
		"num_rows":                  x.cfg.NumRows,
		"cells_per_row":             x.cfg.CellsPerRow,
		"num_hash_tables":           x.cfg.NumHashTables,
		"hash_range":                x.cfg.HashRange,
		"total_points":              x.totalPoints,
		"prepared":                  x.prepared,
		"bucket_entries":            bucketEntries,
		"max_bucket_size":           maxBucket,
		"cell_entries":              cellEntries,
		"max_cell_size":             maxCell,
		"expected_bucket_occupancy": float64(uint64(x.cfg.NumRows)*x.totalPoints) / float64(x.cfg.HashRange),
	}
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("index: %s: %w", op, err)
}
