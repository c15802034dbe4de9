package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestRegistrySupports(t *testing.T) {
	r := NewRegistry()
	for _, ext := range []string{".txt", ".md", ".pdf", ".docx", ".pptx", ".xlsx", ".py", ".csv", ".log"} {
		if !r.Supports(ext) {
			t.Errorf("expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".zip", ".exe", ".png", ""} {
		if r.Supports(ext) {
			t.Errorf("%s should not be supported", ext)
		}
	}
}

func TestRegistrySupportedSorted(t *testing.T) {
	exts := NewRegistry().Supported()
	if len(exts) == 0 {
		t.Fatal("no supported extensions")
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Fatalf("extensions not sorted: %v", exts)
		}
	}
}

func TestRegistryUnsupportedExtract(t *testing.T) {
	if _, err := NewRegistry().Extract([]byte("x"), "a.zip"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestTextExtract(t *testing.T) {
	segs, err := NewRegistry().Extract([]byte("hello world\n"), "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Meta.FileType != "text" || segs[0].Meta.EncodingConfidence != 1.0 {
		t.Errorf("meta = %+v", segs[0].Meta)
	}
}

func TestTextExtractInvalidUTF8(t *testing.T) {
	content := append([]byte("good "), 0xff, 0xfe)
	segs, err := NewRegistry().Extract(content, "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if segs[0].Meta.EncodingConfidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", segs[0].Meta.EncodingConfidence)
	}
	if !strings.Contains(segs[0].Content, "�") {
		t.Error("invalid bytes not replaced")
	}
}

func TestTextExtractWhitespaceOnly(t *testing.T) {
	segs, err := NewRegistry().Extract([]byte("  \n\t "), "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 0 {
		t.Errorf("got %d segments, want 0", len(segs))
	}
}

func TestFileTypeMapping(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		filename string
		fileType string
	}{
		{"a.log", "log"},
		{"run.sh", "script"},
		{"conf.yaml", "config"},
		{"data.csv", "data"},
		{"main.py", "code"},
	}
	for _, tt := range tests {
		segs, err := r.Extract([]byte("content"), tt.filename)
		if err != nil {
			t.Fatalf("%s: %v", tt.filename, err)
		}
		if segs[0].Meta.FileType != tt.fileType {
			t.Errorf("%s: file type = %q, want %q", tt.filename, segs[0].Meta.FileType, tt.fileType)
		}
	}
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDocxExtract(t *testing.T) {
	content := buildZip(t, map[string]string{
		"word/document.xml": `<w:document><w:body>` +
			`<w:p><w:r><w:t>First run.</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t xml:space="preserve">Second run.</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})
	segs, err := NewRegistry().Extract(content, "report.docx")
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Content != "First run. Second run." {
		t.Errorf("content = %q", segs[0].Content)
	}
	if segs[0].Meta.FileType != "docx" {
		t.Errorf("file type = %q", segs[0].Meta.FileType)
	}
}

func TestDocxExtractNotAZip(t *testing.T) {
	if _, err := NewRegistry().Extract([]byte("plain bytes"), "broken.docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
}

func TestPptxExtractPerSlide(t *testing.T) {
	content := buildZip(t, map[string]string{
		"ppt/slides/slide2.xml":  `<p:sld><a:t>Slide two text</a:t></p:sld>`,
		"ppt/slides/slide1.xml":  `<p:sld><a:t>Slide one text</a:t></p:sld>`,
		"ppt/slides/slide10.xml": `<p:sld><a:t>Slide ten text</a:t></p:sld>`,
	})
	segs, err := NewRegistry().Extract(content, "deck.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	// Numeric slide order, not lexicographic.
	if segs[0].Meta.Page != 1 || segs[1].Meta.Page != 2 || segs[2].Meta.Page != 10 {
		t.Errorf("pages = %d, %d, %d", segs[0].Meta.Page, segs[1].Meta.Page, segs[2].Meta.Page)
	}
	if segs[2].Content != "Slide ten text" {
		t.Errorf("content = %q", segs[2].Content)
	}
}

func TestPptxSkipsEmptySlides(t *testing.T) {
	content := buildZip(t, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld><a:t>  </a:t></p:sld>`,
		"ppt/slides/slide2.xml": `<p:sld><a:t>Real</a:t></p:sld>`,
	})
	segs, err := NewRegistry().Extract(content, "deck.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 || segs[0].Meta.Page != 2 {
		t.Fatalf("segs = %+v", segs)
	}
}
