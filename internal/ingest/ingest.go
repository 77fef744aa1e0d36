package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kkarrenn/searchcore/internal/indexer"
)

// Indexer is the subset of engine.Engine's write path a batch ingest needs.
// Both *engine.Engine and *indexer.Indexer satisfy it.
type Indexer interface {
	IndexDocument(req indexer.Request) (*indexer.Result, error)
}

// Stats summarizes one WalkDirectory run.
type Stats struct {
	Indexed int
	Skipped int
	Errors  []error
}

// WalkDirectory reads every regular file directly under dir (mirroring
// document_indexer.py's flat corpus-directory assumption — see
// SPEC_FULL.md's "[FULL] Corpus assumption"), extracts {title, abstract,
// body} per file, and feeds each into idx one document at a time in
// deterministic filename order. A file that fails to extract or index is
// recorded in Stats.Errors and skipped; WalkDirectory does not abort on
// the first failure, since a single malformed file in a multi-thousand
// document corpus should not block the rest.
func WalkDirectory(idx Indexer, dir string) (Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Stats{}, fmt.Errorf("ingest: read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var stats Stats
	for i, name := range names {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("read %s: %w", path, err))
			stats.Skipped++
			continue
		}

		doc, err := ExtractFromFile(content, fileTypeOf(path))
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("extract %s: %w", path, err))
			stats.Skipped++
			continue
		}
		if doc.Body == "" {
			stats.Skipped++
			continue
		}

		_, err = idx.IndexDocument(indexer.Request{
			DocID:    docIDFromIndex(path, i),
			Title:    doc.Title,
			Abstract: doc.Abstract,
			Body:     doc.Body,
		})
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("index %s: %w", path, err))
			stats.Skipped++
			continue
		}
		stats.Indexed++
	}
	return stats, nil
}
