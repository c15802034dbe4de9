// Package cli provides output formatting for the Toshokan CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/toshokan/internal/models"
	"github.com/hyperjump/toshokan/pkg/utils"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteQueryResults writes query results to w in the given format.
func WriteQueryResults(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	if len(response.Results) == 0 {
		fmt.Fprintf(w, "No results for %q\n", response.Query)
		return nil
	}
	fmt.Fprintf(w, "\n%d result(s) for %q\n\n", len(response.Results), response.Query)
	for i, r := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%d] %s (page %s)\n", i+1, r.Source, r.Page)
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(r.Content, 400))
	}
	return nil
}

// WriteDocumentList writes the indexed sources to w in the given format.
func WriteDocumentList(w io.Writer, response *models.ListDocumentsResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "files:  %d\nchunks: %d\n", response.TotalFiles, response.TotalChunks)
	for _, f := range response.Files {
		if f.Pages != nil {
			fmt.Fprintf(w, "  %s  (%d chunks, %d pages)\n", f.Filename, f.Chunks, *f.Pages)
		} else {
			fmt.Fprintf(w, "  %s  (%d chunks)\n", f.Filename, f.Chunks)
		}
	}
	return nil
}

// WriteFolderReport writes a folder ingestion report to w in the given format.
func WriteFolderReport(w io.Writer, report *models.FolderReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "processed: %d file(s)\n", report.ProcessedFiles)
	fmt.Fprintf(w, "written:   %d chunk(s) in %d batch(es)\n", report.ChunksWritten, report.BatchesWritten)
	if len(report.SkippedFiles) > 0 {
		fmt.Fprintf(w, "skipped:   %d already indexed\n", len(report.SkippedFiles))
	}
	for _, f := range report.FailedFiles {
		fmt.Fprintf(w, "failed:    %s (%s)\n", f.Filename, f.Reason)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
