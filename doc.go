// Package flinng implements FLINNG (Filters to Identify Near-Neighbor
// Groups), a sub-linear approximate nearest-neighbor index built on
// locality-sensitive hashing.
//
// A FlinngIndex (pkg/index) is hash-family agnostic: it only ever sees
// point-major streams of already-computed LSH hash values, grouped into T
// hash tables spread across R rows of cells. Three hash families
// (pkg/hash) turn real vectors into that hash stream — Signed Random
// Projection for cosine similarity, L2-LSH for Euclidean distance, and
// Densified MinHash for Jaccard similarity over sparse token sets — and
// three typed wrappers (DenseAngular, DenseL2, Sparse) compose a hash
// family with a FlinngIndex and, optionally, a raw-vector store
// (pkg/rawstore) so SearchWithDistance can re-rank hash-based candidates
// against their true vectors.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/liliang-cn/flinng"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    idx, _ := flinng.NewDenseAngular(flinng.DefaultBuilder(128))
//
//	    points := make([]float32, 128*1000) // 1000 128-dim vectors
//	    idx.AddPoints(ctx, points, 1000)
//
//	    results, _ := idx.Query(ctx, points[:128], 10)
//	    _ = results
//	}
//
// # Persisting With a Raw-Vector Store
//
// AddAndStore and SearchWithDistance need a rawstore.Store attached so
// a hash-only candidate id can be re-ranked against its real vector:
//
//	store := rawstore.NewMemory(128)
//	idx.AttachStore(store)
//	id, _ := idx.AddAndStore(ctx, vector)
//	results, _ := idx.SearchWithDistance(ctx, query, 10)
//
// # Serialization
//
// Write saves an index's hash family (including the SRP/L2-LSH sign
// matrix) together with its hash tables and cell membership, and
// ReadDenseAngular, ReadDenseL2 and ReadSparse restore it; an attached
// raw-vector store is not included and is saved separately by the caller.
package flinng
