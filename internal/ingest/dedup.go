package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperjump/toshokan/internal/models"
)

// ListFolder enumerates files in folder whose extension satisfies supports
// (case-insensitive), deduplicated by absolute path and sorted by path.
// The sort makes repeated runs over an unchanged folder produce identical
// processing order and batch boundaries.
func ListFolder(folder string, supports func(ext string) bool) ([]models.SourceFile, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}
	seen := make(map[string]bool)
	var files []models.SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !supports(ext) {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		files = append(files, models.NewSourceFile(abs))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Partition splits candidates into files to process and already-indexed
// basenames to skip. A candidate is skipped iff its basename is present in
// indexed. Note the identity key is the basename, not a content hash: two
// different files sharing a name are treated as the same source.
func Partition(indexed map[string]struct{}, candidates []models.SourceFile) (toProcess []models.SourceFile, skipped []string) {
	for _, f := range candidates {
		if _, ok := indexed[f.Name]; ok {
			skipped = append(skipped, f.Name)
		} else {
			toProcess = append(toProcess, f)
		}
	}
	return toProcess, skipped
}
