package barrel

import (
	"fmt"
	"os"
	"sort"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// ColdReader is a read-only view over one immutable cold barrel's .bin/.idx
// pair. Cold barrels are produced by the bulk ingestion pipeline (outside
// this package's scope, spec.md §4.3) and are fatal to open if corrupt
// (spec.md §7: "Corrupt cold barrels are fatal").
type ColdReader struct {
	binPath string
	entries []indexEntry // sorted by LemmaID
}

// OpenColdReader loads and validates a cold barrel's index file. The .bin
// file itself is read lazily, record by record, on Read.
func OpenColdReader(binPath, idxPath string) (*ColdReader, error) {
	idxData, err := os.ReadFile(idxPath)
	if err != nil {
		return nil, fmt.Errorf("barrel: open cold index %s: %w", idxPath, err)
	}
	entries, err := decodeIndex(idxData)
	if err != nil {
		return nil, fmt.Errorf("barrel: cold index %s: %w", idxPath, err)
	}
	if _, err := os.Stat(binPath); err != nil {
		return nil, fmt.Errorf("barrel: cold bin %s: %w", binPath, err)
	}
	return &ColdReader{binPath: binPath, entries: entries}, nil
}

// Read performs a binary search over the index and returns the matching
// posting list, reading only the bytes belonging to that record.
func (r *ColdReader) Read(lemmaID uint32) (*PostingList, bool, error) {
	n := len(r.entries)
	idx := sort.Search(n, func(i int) bool { return r.entries[i].LemmaID >= lemmaID })
	if idx >= n || r.entries[idx].LemmaID != lemmaID {
		return nil, false, nil
	}
	entry := r.entries[idx]

	f, err := os.Open(r.binPath)
	if err != nil {
		return nil, false, fmt.Errorf("barrel: %w: %v", corpuserrors.ErrIOError, err)
	}
	defer f.Close()

	rec := make([]byte, entry.Length)
	if _, err := f.ReadAt(rec, entry.Offset); err != nil {
		return nil, false, fmt.Errorf("barrel: %w: %v", corpuserrors.ErrIOError, err)
	}

	pl, err := decodePostingList(rec)
	if err != nil {
		return nil, false, err
	}
	return pl, true, nil
}

// Len reports the number of lemmas indexed in this cold barrel.
func (r *ColdReader) Len() int { return len(r.entries) }
