package ingest

import (
	"strings"
	"testing"

	"github.com/hyperjump/toshokan/internal/models"
)

func TestChunkerWindows(t *testing.T) {
	c := NewChunker(10, 3)
	text := "abcdefghijklmnopqrst" // 20 chars
	chunks := c.Split([]models.Segment{{Content: text, Meta: models.Attribution{Source: "a.txt"}}})

	// step = 7: windows at 0, 7, 14
	want := []string{"abcdefghij", "hijklmnopq", "opqrst"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Content, w)
		}
	}
}

func TestChunkerOverlapRepeatsTail(t *testing.T) {
	c := NewChunker(10, 3)
	chunks := c.Split([]models.Segment{{Content: strings.Repeat("x", 15) + "TAIL" + strings.Repeat("y", 5)}})
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		overlap := prev[len(prev)-3:]
		if !strings.HasPrefix(chunks[i].Content, overlap) {
			t.Errorf("chunk %d does not start with previous tail %q: %q", i, overlap, chunks[i].Content)
		}
	}
}

func TestChunkerShortSegment(t *testing.T) {
	c := NewChunker(600, 100)
	chunks := c.Split([]models.Segment{{Content: "short text"}})
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != "short text" {
		t.Errorf("content = %q", chunks[0].Content)
	}
}

func TestChunkerSkipsWhitespaceSegments(t *testing.T) {
	c := NewChunker(600, 100)
	chunks := c.Split([]models.Segment{
		{Content: "   \n\t  "},
		{Content: "real content"},
		{Content: ""},
	})
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestChunkerNeverCrossesSegments(t *testing.T) {
	c := NewChunker(10, 3)
	chunks := c.Split([]models.Segment{
		{Content: "page one", Meta: models.Attribution{Source: "d.pdf", Page: 1}},
		{Content: "page two", Meta: models.Attribution{Source: "d.pdf", Page: 2}},
	})
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Meta.Page != 1 || chunks[1].Meta.Page != 2 {
		t.Errorf("pages = %d, %d", chunks[0].Meta.Page, chunks[1].Meta.Page)
	}
	if strings.Contains(chunks[0].Content, "two") {
		t.Errorf("chunk crossed segment boundary: %q", chunks[0].Content)
	}
}

func TestChunkerIDsDistinct(t *testing.T) {
	c := NewChunker(5, 1)
	chunks := c.Split([]models.Segment{{Content: strings.Repeat("z", 40), Meta: models.Attribution{Source: "s.txt"}}})
	seen := make(map[string]bool)
	for _, ch := range chunks {
		if !strings.HasPrefix(ch.ID, "s.txt_") {
			t.Errorf("ID %q does not carry the source prefix", ch.ID)
		}
		if seen[ch.ID] {
			t.Errorf("duplicate ID %q", ch.ID)
		}
		seen[ch.ID] = true
	}
}

func TestChunkerUnicodeBoundaries(t *testing.T) {
	c := NewChunker(4, 1)
	chunks := c.Split([]models.Segment{{Content: "日本語のテキストです"}})
	for i, ch := range chunks {
		if strings.ContainsRune(ch.Content, '�') {
			t.Errorf("chunk %d split inside a rune: %q", i, ch.Content)
		}
	}
}
