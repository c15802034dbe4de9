package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/toshokan/internal/models"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteQueryResultsText(t *testing.T) {
	resp := &models.QueryResponse{
		Query: "invoices",
		Results: []models.QueryResult{
			{Source: "report.pdf", Page: "3", Content: "quarterly invoices"},
			{Source: "notes.txt", Page: "N/A", Content: "misc notes"},
		},
	}
	var buf bytes.Buffer
	if err := WriteQueryResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`2 result(s) for "invoices"`, "[1] report.pdf (page 3)", "[2] notes.txt (page N/A)", "quarterly invoices"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteQueryResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQueryResults(&buf, &models.QueryResponse{Query: "nothing"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `No results for "nothing"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteQueryResultsJSON(t *testing.T) {
	resp := &models.QueryResponse{
		Query:   "x",
		Results: []models.QueryResult{{Source: "a.txt", Page: "N/A", Content: "body"}},
	}
	var buf bytes.Buffer
	if err := WriteQueryResults(&buf, resp, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.QueryResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Query != "x" || len(decoded.Results) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteDocumentList(t *testing.T) {
	pages := 12
	resp := &models.ListDocumentsResponse{
		TotalFiles:  2,
		TotalChunks: 40,
		Files: []models.FileInfo{
			{Filename: "book.pdf", Chunks: 30, Pages: &pages},
			{Filename: "memo.txt", Chunks: 10},
		},
	}
	var buf bytes.Buffer
	if err := WriteDocumentList(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"files:  2", "chunks: 40", "book.pdf  (30 chunks, 12 pages)", "memo.txt  (10 chunks)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteFolderReport(t *testing.T) {
	report := &models.FolderReport{
		ProcessedFiles: 5,
		ChunksWritten:  42,
		BatchesWritten: 1,
		SkippedFiles:   []string{"old.txt"},
		FailedFiles:    []models.FileFailure{{Filename: "bad.pdf", Reason: "empty or unreadable content"}},
	}
	var buf bytes.Buffer
	if err := WriteFolderReport(&buf, report, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"processed: 5 file(s)", "written:   42 chunk(s) in 1 batch(es)", "skipped:   1 already indexed", "failed:    bad.pdf (empty or unreadable content)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
