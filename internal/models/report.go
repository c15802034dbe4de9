package models

// FileFailure records a single file that could not be ingested and why.
type FileFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// FolderReport summarizes a folder ingestion run. When a flush fails mid-run
// the counts reflect only what was durably written before the failing batch.
type FolderReport struct {
	ProcessedFiles int           `json:"processed_files"`
	SkippedFiles   []string      `json:"skipped_files,omitempty"`
	FailedFiles    []FileFailure `json:"failed_files,omitempty"`
	BatchesWritten int           `json:"batches_written"`
	ChunksWritten  int           `json:"chunks_written"`
}

// SourceStats holds per-source chunk and page counts for listing.
type SourceStats struct {
	Chunks int
	Pages  int
}

// CollectionStats summarizes the whole knowledge base.
type CollectionStats struct {
	TotalChunks int
	Sources     map[string]SourceStats
}
