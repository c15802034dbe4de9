// Package store persists the knowledge base: a flat vector index on disk
// plus a SQLite docstore holding chunk text and attribution.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/embedding"
	"github.com/hyperjump/toshokan/internal/models"
	"github.com/hyperjump/toshokan/internal/vector"
)

const (
	indexFileName = "index.bin"
	dbFileName    = "chunks.db"
)

// ErrNoIndex is returned by read operations when nothing has ever been
// persisted to the store directory.
var ErrNoIndex = errors.New("no index found")

// ScoredChunk is a chunk with its similarity score.
type ScoredChunk struct {
	models.Chunk
	Score float64
}

// Store owns a store directory. The presence of the index file is the sole
// signal that a knowledge base exists; the handle is opened lazily and cached
// for the life of the Store. All operations are serialized by a single mutex:
// one process writes a store directory at a time.
type Store struct {
	dir      string
	embedder embedding.Embedder
	logger   *zap.Logger

	mu     sync.Mutex
	index  *vector.FlatIndex
	docs   *docStore
	loaded bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a Store over dir. Nothing is opened or created until the
// first operation that needs it.
func NewStore(dir string, embedder embedding.Embedder, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		embedder: embedder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) indexPath() string { return filepath.Join(s.dir, indexFileName) }
func (s *Store) dbPath() string    { return filepath.Join(s.dir, dbFileName) }

func (s *Store) exists() bool {
	_, err := os.Stat(s.indexPath())
	return err == nil
}

// open loads the index and docstore, caching the handle. With create false
// it returns ErrNoIndex when the index file has never been written.
func (s *Store) open(create bool) error {
	if s.loaded {
		return nil
	}
	if !create && !s.exists() {
		return ErrNoIndex
	}

	docs, err := newDocStore(s.dbPath())
	if err != nil {
		return err
	}

	index, err := vector.NewFlatIndex(s.embedder.Dimensions())
	if err != nil {
		_ = docs.close()
		return err
	}
	if err := index.Load(s.indexPath()); err != nil {
		_ = docs.close()
		return fmt.Errorf("failed to load index: %w", err)
	}

	s.docs = docs
	s.index = index
	s.loaded = true
	s.logger.Debug("store opened",
		zap.String("dir", s.dir),
		zap.Int("vectors", index.Size()))
	return nil
}

// Append embeds chunks, stages their rows, adds their vectors and persists
// everything before returning. Rows are committed only after the index file
// is durable, so a crash mid-flush leaves at worst orphan vectors, never
// chunks that cannot be rehydrated.
func (s *Store) Append(ctx context.Context, chunks []*models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.open(true); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
		ids[i] = c.ID
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	tx, err := s.docs.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.docs.stageChunks(ctx, tx, chunks); err != nil {
		return fmt.Errorf("failed to stage chunks: %w", err)
	}
	// From here on the cached index holds vectors the transaction may never
	// commit. Any failure drops the handle so the next open reloads the last
	// durably saved state instead of flushing orphan vectors later.
	if err := s.index.Add(ctx, ids, vectors); err != nil {
		s.reset(tx)
		return err
	}
	if err := s.index.Save(s.indexPath()); err != nil {
		s.reset(tx)
		return fmt.Errorf("failed to save index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		s.reset(tx)
		return fmt.Errorf("failed to commit chunks: %w", err)
	}

	s.logger.Debug("chunks appended",
		zap.Int("count", len(chunks)),
		zap.Int("total", s.index.Size()))
	return nil
}

// reset rolls back tx and invalidates the cached handle after a failed
// flush. Caller holds the mutex.
func (s *Store) reset(tx *sql.Tx) {
	_ = tx.Rollback()
	s.loaded = false
	s.index = nil
	if s.docs != nil {
		_ = s.docs.close()
		s.docs = nil
	}
}

// Sources returns the set of indexed source basenames. An empty set when the
// store has never been written.
func (s *Store) Sources(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded && !s.exists() {
		return map[string]struct{}{}, nil
	}
	if err := s.open(true); err != nil {
		return nil, err
	}
	return s.docs.sources(ctx)
}

// Search embeds the query and returns the k nearest chunks, best first.
// ErrNoIndex when nothing has ever been persisted.
func (s *Store) Search(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.open(false); err != nil {
		return nil, err
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.index.Search(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	byID, err := s.docs.chunksByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk, ok := byID[r.ID]
		if !ok {
			continue
		}
		scored = append(scored, ScoredChunk{Chunk: chunk, Score: r.Score})
	}
	return scored, nil
}

// Stats returns per-source chunk and page counts. Zero stats when the store
// has never been written.
func (s *Store) Stats(ctx context.Context) (models.CollectionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded && !s.exists() {
		return models.CollectionStats{Sources: map[string]models.SourceStats{}}, nil
	}
	if err := s.open(true); err != nil {
		return models.CollectionStats{}, err
	}
	return s.docs.stats(ctx)
}

// Loaded reports whether the handle is cached in memory.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Close releases the cached handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil
	}
	s.loaded = false
	s.index = nil
	docs := s.docs
	s.docs = nil
	return docs.close()
}
