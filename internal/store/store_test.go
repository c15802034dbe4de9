package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/toshokan/internal/embedding"
	"github.com/hyperjump/toshokan/internal/models"
)

func testChunk(id, source, content string, page int) *models.Chunk {
	return &models.Chunk{
		ID:      id,
		Content: content,
		Meta:    models.Attribution{Source: source, Page: page, FileType: "text"},
	}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewStore(dir, embedding.NewMockEmbedder(32))
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestSearchBeforeAnyWrite(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Search(context.Background(), "anything", 4)
	if !errors.Is(err, ErrNoIndex) {
		t.Fatalf("err = %v, want ErrNoIndex", err)
	}
}

func TestAppendAndSearch(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	chunks := []*models.Chunk{
		testChunk("c1", "a.txt", "the quick brown fox", 0),
		testChunk("c2", "a.txt", "jumps over the lazy dog", 0),
		testChunk("c3", "b.pdf", "completely unrelated text", 2),
	}
	if err := s.Append(ctx, chunks); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search(ctx, "the quick brown fox", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	// The mock embedder is deterministic, so the exact text is its own
	// nearest neighbor.
	if hits[0].ID != "c1" {
		t.Errorf("top hit = %s, want c1", hits[0].ID)
	}
	if hits[0].Meta.Source != "a.txt" {
		t.Errorf("source = %q", hits[0].Meta.Source)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not ordered by score")
	}
}

func TestSourcesAndStats(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sources, err := s.Sources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 0 {
		t.Fatalf("sources = %v, want empty before first write", sources)
	}

	err = s.Append(ctx, []*models.Chunk{
		testChunk("c1", "a.txt", "alpha", 0),
		testChunk("c2", "a.txt", "beta", 0),
		testChunk("c3", "b.pdf", "gamma", 1),
		testChunk("c4", "b.pdf", "delta", 3),
	})
	if err != nil {
		t.Fatal(err)
	}

	sources, err = s.Sources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sources["a.txt"]; !ok {
		t.Error("a.txt missing from sources")
	}
	if _, ok := sources["b.pdf"]; !ok {
		t.Error("b.pdf missing from sources")
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks != 4 {
		t.Errorf("total chunks = %d, want 4", stats.TotalChunks)
	}
	if got := stats.Sources["a.txt"]; got.Chunks != 2 || got.Pages != 0 {
		t.Errorf("a.txt stats = %+v", got)
	}
	if got := stats.Sources["b.pdf"]; got.Chunks != 2 || got.Pages != 2 {
		t.Errorf("b.pdf stats = %+v", got)
	}
}

func TestStatsBeforeAnyWrite(t *testing.T) {
	s, _ := newTestStore(t)
	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks != 0 || len(stats.Sources) != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestFreshOpenSeesSavedState(t *testing.T) {
	dir := t.TempDir()
	embedder := embedding.NewMockEmbedder(32)
	ctx := context.Background()

	first := NewStore(dir, embedder)
	err := first.Append(ctx, []*models.Chunk{testChunk("c1", "a.txt", "persisted content", 0)})
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := NewStore(dir, embedder)
	defer second.Close()
	hits, err := second.Search(ctx, "persisted content", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "c1" {
		t.Fatalf("hits = %v", hits)
	}
}

func TestAppendFailedFlushKeepsDurableStateOnly(t *testing.T) {
	dir := t.TempDir()
	embedder := embedding.NewMockEmbedder(32)
	ctx := context.Background()
	s := NewStore(dir, embedder)
	defer s.Close()

	if err := s.Append(ctx, []*models.Chunk{testChunk("c1", "a.txt", "first durable chunk", 0)}); err != nil {
		t.Fatal(err)
	}

	indexPath := filepath.Join(dir, indexFileName)
	saved, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	// Make the next index save fail by putting a directory in its place.
	if err := os.Remove(indexPath); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(indexPath, 0755); err != nil {
		t.Fatal(err)
	}

	err = s.Append(ctx, []*models.Chunk{testChunk("c2", "b.txt", "never durable chunk", 0)})
	if err == nil {
		t.Fatal("append should fail when the index cannot be saved")
	}
	if s.Loaded() {
		t.Error("failed flush must drop the cached handle")
	}

	// Restore the last durable state and keep writing.
	if err := os.Remove(indexPath); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(indexPath, saved, 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, []*models.Chunk{testChunk("c3", "c.txt", "third durable chunk", 0)}); err != nil {
		t.Fatal(err)
	}

	// The failed batch must not leak into later flushes: the index holds
	// exactly the two durable chunks, and searching for the rolled-back
	// chunk's exact text never surfaces it.
	hits, err := s.Search(ctx, "never durable chunk", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2 (the durable chunks only)", len(hits))
	}
	for _, h := range hits {
		if h.ID == "c2" {
			t.Error("rolled-back chunk c2 leaked into the index")
		}
	}

	sources, err := s.Sources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sources["b.txt"]; ok {
		t.Error("rolled-back source b.txt leaked into the docstore")
	}
}

func TestLoadedTracksHandle(t *testing.T) {
	s, _ := newTestStore(t)
	if s.Loaded() {
		t.Error("new store must not be loaded")
	}
	err := s.Append(context.Background(), []*models.Chunk{testChunk("c1", "a.txt", "x", 0)})
	if err != nil {
		t.Fatal(err)
	}
	if !s.Loaded() {
		t.Error("store should be loaded after append")
	}
}

func TestAppendEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Append(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if s.Loaded() {
		t.Error("empty append must not open the store")
	}
}
