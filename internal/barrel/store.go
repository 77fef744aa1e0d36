package barrel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// Store ties together the cold barrel readers, the mutable hot barrel, and
// the barrel lookup table that tells a reader which cold barrel (if any)
// holds a given lemma. It is safe for concurrent reads; writes are
// serialized by the indexer (spec.md §5).
type Store struct {
	mu   sync.RWMutex
	cold map[int]*ColdReader
	hot  *Hot

	lookup map[uint32]int // lemma_id -> barrel_id

	indexesDir string
	barrelsDir string
	binaryDir  string
}

// Open loads the barrel lookup table, every cold barrel referenced by it
// that has binary files on disk, and the hot barrel's text form. A corrupt
// cold barrel is fatal (spec.md §7); a corrupt hot barrel text form is
// tolerated by re-initializing it empty.
func Open(indexesDir, barrelsDir, binaryDir string) (*Store, error) {
	s := &Store{
		cold:       make(map[int]*ColdReader),
		lookup:     make(map[uint32]int),
		indexesDir: indexesDir,
		barrelsDir: barrelsDir,
		binaryDir:  binaryDir,
	}

	lookupPath := filepath.Join(indexesDir, "barrel_lookup.json")
	if data, err := os.ReadFile(lookupPath); err == nil {
		var raw map[string]int
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("barrel: %w: barrel_lookup.json: %v", corpuserrors.ErrCorruptIndex, err)
		}
		for k, v := range raw {
			id, err := strconv.ParseUint(k, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("barrel: %w: bad lemma id %q in barrel_lookup.json", corpuserrors.ErrCorruptIndex, k)
			}
			s.lookup[uint32(id)] = v
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("barrel: read barrel_lookup.json: %w", err)
	}

	coldIDs := make(map[int]struct{})
	for _, id := range s.lookup {
		if id != HotBarrelID {
			coldIDs[id] = struct{}{}
		}
	}
	for id := range coldIDs {
		binPath := filepath.Join(binaryDir, fmt.Sprintf("barrel_%d.bin", id))
		idxPath := filepath.Join(binaryDir, fmt.Sprintf("barrel_%d.idx", id))
		if _, err := os.Stat(binPath); os.IsNotExist(err) {
			continue
		}
		reader, err := OpenColdReader(binPath, idxPath)
		if err != nil {
			return nil, err
		}
		s.cold[id] = reader
	}

	hotTextPath := filepath.Join(barrelsDir, "barrel_new_docs.json")
	s.hot = LoadHotText(hotTextPath)

	return s, nil
}

// ReadPostings implements spec.md §4.3's read_postings: consult the barrel
// lookup to pick a cold barrel, then also read the hot barrel, merging by
// doc id with hot winning ties. A lemma unknown to both yields (nil,
// false) — never an error (spec.md §7: "A lemma not in any barrel is
// simply empty — never an error").
func (s *Store) ReadPostings(lemmaID uint32) (*PostingList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cold *PostingList
	if barrelID, ok := s.lookup[lemmaID]; ok && barrelID != HotBarrelID {
		if reader, ok := s.cold[barrelID]; ok {
			if pl, found, err := reader.Read(lemmaID); err == nil && found {
				cold = pl
			}
		}
	}

	hot, _ := s.hot.Read(lemmaID)
	merged := mergeUnionHotWins(cold, hot)
	if merged == nil {
		return nil, false
	}
	return merged, true
}

// AppendHot records a posting in the hot barrel and, if this is the first
// time the lemma has been seen anywhere, records its barrel assignment as
// hot (spec.md §4.3: "A lemma added by the indexer lands in the hot barrel
// regardless of lookup state"). Callers must hold the indexer's
// process-wide write lock (spec.md §5).
func (s *Store) AppendHot(lemmaID uint32, docID string, tf uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hot.Append(lemmaID, docID, tf)
	if _, ok := s.lookup[lemmaID]; !ok {
		s.lookup[lemmaID] = HotBarrelID
	}
}

// FlushHot persists the hot barrel's text form, rebuilds its binary
// mirror, and persists the barrel lookup table — all via atomic
// temp-file + rename.
func (s *Store) FlushHot() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hotTextPath := filepath.Join(s.barrelsDir, "barrel_new_docs.json")
	if err := s.hot.SaveText(hotTextPath); err != nil {
		return fmt.Errorf("barrel: flush hot text: %w", err)
	}
	if err := s.hot.FlushBinary(s.binaryDir); err != nil {
		return fmt.Errorf("barrel: flush hot binary: %w", err)
	}
	return s.saveLookupLocked()
}

func (s *Store) saveLookupLocked() error {
	raw := make(map[string]int, len(s.lookup))
	for lemmaID, barrelID := range s.lookup {
		raw[strconv.FormatUint(uint64(lemmaID), 10)] = barrelID
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(s.indexesDir, "barrel_lookup.json"), data)
}

// DocumentCount is not tracked by Store; the query engine caches N
// separately from the forward index scan (spec.md §4.8). HotLemmas is
// exposed for the autocomplete builder, which needs every lemma's merged
// df (spec.md §4.5).
func (s *Store) HotLemmas() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hot.Lemmas()
}

// ColdBarrelIDs returns the set of cold barrel ids currently open, for
// diagnostics and for the autocomplete builder's full-lexicon df scan.
func (s *Store) ColdBarrelIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.cold))
	for id := range s.cold {
		ids = append(ids, id)
	}
	return ids
}
