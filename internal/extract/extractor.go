// Package extract provides attributed text extraction from various document formats.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/toshokan/internal/models"
)

// Extractor extracts attributed text segments from raw file content.
// filename is the basename used for source attribution.
type Extractor interface {
	Extract(content []byte, filename string) ([]models.Segment, error)
}

// Registry maps file extensions to extractors. New formats are registered
// without touching the ingestion pipeline.
type Registry struct {
	byExt map[string]Extractor
}

// textFileTypes maps text-family extensions to their attribution file type.
var textFileTypes = map[string]string{
	".txt":  "text",
	".log":  "log",
	".bat":  "script",
	".sh":   "script",
	".ps1":  "script",
	".json": "config",
	".yaml": "config",
	".yml":  "config",
	".ini":  "config",
	".cfg":  "config",
	".conf": "config",
	".csv":  "data",
	".py":   "code",
	".js":   "code",
	".ts":   "code",
	".html": "code",
	".css":  "code",
	".xml":  "code",
}

// NewRegistry returns a registry with all built-in extractors registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(".pdf", pdfExtractor{})
	r.Register(".docx", docxExtractor{})
	r.Register(".pptx", pptxExtractor{})
	r.Register(".xlsx", excelExtractor{})
	r.Register(".xls", excelExtractor{})
	r.Register(".md", markdownExtractor{})
	r.Register(".markdown", markdownExtractor{})
	r.Register(".odp", odpExtractor{})
	r.Register(".ods", odsExtractor{})
	for ext, fileType := range textFileTypes {
		r.Register(ext, textExtractor{fileType: fileType})
	}
	return r
}

// Register maps ext (with leading dot, case-insensitive) to e.
func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// Supports reports whether files with the given extension can be extracted.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Supported returns the sorted list of registered extensions.
func (r *Registry) Supported() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract picks the extractor for filename's extension and runs it.
// Returns an error if the extension is not registered.
func (r *Registry) Extract(content []byte, filename string) ([]models.Segment, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for %q", ext)
	}
	return e.Extract(content, filepath.Base(filename))
}

// ExtractFile reads the file at path and extracts it.
func (r *Registry) ExtractFile(path string) ([]models.Segment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return r.Extract(content, filepath.Base(path))
}
