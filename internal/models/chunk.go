// Package models defines core data structures for source files, segments, chunks, and reports.
package models

import (
	"path/filepath"
	"strings"
)

// SourceFile identifies a candidate file for ingestion.
// Name (the basename) is the identity key for duplicate detection; two files
// with the same basename in different folders are treated as the same source.
type SourceFile struct {
	Path string
	Name string
	Ext  string
}

// NewSourceFile builds a SourceFile from a path. Ext is lowercased and
// includes the leading dot.
func NewSourceFile(path string) SourceFile {
	return SourceFile{
		Path: path,
		Name: filepath.Base(path),
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
}

// Attribution records where a piece of text came from.
// Page 0 and empty Sheet mean unset.
type Attribution struct {
	Source             string  `json:"source"`
	Page               int     `json:"page,omitempty"`
	Sheet              string  `json:"sheet,omitempty"`
	FileType           string  `json:"file_type"`
	Encoding           string  `json:"encoding,omitempty"`
	EncodingConfidence float64 `json:"encoding_confidence,omitempty"`
}

// Segment is a unit of raw extracted text with attribution: one PDF page,
// one slide, one sheet, or a whole file. Segments are immutable once produced.
type Segment struct {
	Content string
	Meta    Attribution
}

// Chunk is a bounded-length span of extracted text, the unit stored in the
// vector index. Meta.Source always equals the basename of the originating
// file before persistence, never a full path.
type Chunk struct {
	ID      string
	Content string
	Meta    Attribution
}
