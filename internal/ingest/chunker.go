// Package ingest provides chunking, duplicate filtering, and the ingestion pipeline.
package ingest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/toshokan/internal/models"
)

// Splitter turns extracted segments into chunks. The pipeline depends only on
// this contract so the splitting strategy is swappable.
type Splitter interface {
	Split(segments []models.Segment) []*models.Chunk
}

// Chunker splits segments into fixed-size overlapping character windows.
// Chunks never cross segment boundaries, so a chunk never mixes content from
// two pages, slides, or sheets.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split produces chunks in segment order, each inheriting its parent
// segment's attribution. Whitespace-only segments yield no chunks.
func (c *Chunker) Split(segments []models.Segment) []*models.Chunk {
	var chunks []*models.Chunk
	for _, seg := range segments {
		chunks = append(chunks, c.splitSegment(seg)...)
	}
	return chunks
}

func (c *Chunker) splitSegment(seg models.Segment) []*models.Chunk {
	text := strings.TrimSpace(seg.Content)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	var chunks []*models.Chunk
	for i := 0; i < len(runes); i += step {
		end := i + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, &models.Chunk{
			ID:      fmt.Sprintf("%s_%s", seg.Meta.Source, uuid.New().String()[:8]),
			Content: string(runes[i:end]),
			Meta:    seg.Meta,
		})
		if end >= len(runes) {
			break
		}
	}
	return chunks
}
