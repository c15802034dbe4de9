// Package vector provides the persistent vector index used for k-nearest-neighbor search.
package vector

import "context"

// Index defines vector storage and similarity search. The rest of the system
// treats it as an opaque store supporting insert and k-NN lookup.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// Result is a single vector search hit; ID is the chunk ID.
type Result struct {
	ID    string
	Score float64 // Inner product; equals cosine similarity for normalized vectors.
}
