// Package lexicon maintains the canonical surface-word -> integer-id ->
// lemma-id mapping every other searchcore component relies on. Grounded on
// original_source/backend/lexicon.py's Lexicon class and
// py/document_indexer.py's incremental _get_or_create_lemma_id, reshaped
// into typed maps (surface -> word id, lemma -> lemma id, word id ->
// lemma id) plus insertion-order slices. The sorted binary form lives in
// BinaryCache.
package lexicon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
	"github.com/kkarrenn/searchcore/internal/tokenizer"
)

// NumberLemmaID is the reserved lemma identifier purely-numeric surfaces
// map to (spec.md §3). It is always lemma id 0; the first real lemma gets
// id 1.
const NumberLemmaID uint32 = 0

// maxID is the identifier-space ceiling (spec.md §4.2: "identifier overflow
// (>= 2^32 surfaces) is fatal").
const maxID = uint32(1<<32 - 1)

// Lexicon is the in-memory, append-only word/lemma identity table. Not
// safe for concurrent writers; the indexer is the sole writer, and the
// engine's RWMutex keeps readers out while a write is in progress.
type Lexicon struct {
	wordID      map[string]uint32
	lemmaID     map[string]uint32
	wordToLemma map[uint32]uint32

	words  []string // wordID's keys, indexed for deterministic iteration
	lemmas []string

	nextWordID  uint32
	nextLemmaID uint32
}

// New returns an empty lexicon with the number sentinel already reserved,
// per spec.md §4.2's invariant that the sentinel is reserved at
// construction.
func New() *Lexicon {
	l := &Lexicon{
		wordID:      make(map[string]uint32),
		lemmaID:     make(map[string]uint32),
		wordToLemma: make(map[uint32]uint32),
	}
	l.lemmaID[tokenizer.NumberSentinel] = NumberLemmaID
	l.lemmas = append(l.lemmas, tokenizer.NumberSentinel)
	l.nextLemmaID = NumberLemmaID + 1
	return l
}

// NewNearFull returns a lexicon whose word/lemma id counters are pinned
// remaining slots below maxID, for exercising identifier-space exhaustion
// (spec.md §4.2) without actually interning 2^32 surfaces.
func NewNearFull(remaining uint32) *Lexicon {
	l := New()
	l.nextWordID = maxID - remaining
	l.nextLemmaID = maxID - remaining
	return l
}

// InternWord assigns (or returns the existing) word_id/lemma_id pair for a
// surface/lemma. Idempotent: calling it twice with the same surface
// returns the same ids and does not mutate the lexicon the second time.
// Numeric surfaces (callers are expected to pass the original surface
// even though the tokenizer drops them) always map to NumberLemmaID.
func (l *Lexicon) InternWord(surface, lemma string) (wordID, lemmaID uint32, isNew bool, err error) {
	if existing, ok := l.wordID[surface]; ok {
		return existing, l.wordToLemma[existing], false, nil
	}

	if l.nextWordID == maxID {
		return 0, 0, false, fmt.Errorf("lexicon: %w", corpuserrors.ErrLexiconFull)
	}

	wordID = l.nextWordID
	l.nextWordID++
	l.wordID[surface] = wordID
	l.words = append(l.words, surface)

	if isNumericSurface(surface) {
		lemmaID = NumberLemmaID
	} else {
		existingLemma, ok := l.lemmaID[lemma]
		if ok {
			lemmaID = existingLemma
		} else {
			if l.nextLemmaID == maxID {
				return 0, 0, false, fmt.Errorf("lexicon: %w", corpuserrors.ErrLexiconFull)
			}
			lemmaID = l.nextLemmaID
			l.nextLemmaID++
			l.lemmaID[lemma] = lemmaID
			l.lemmas = append(l.lemmas, lemma)
		}
	}

	l.wordToLemma[wordID] = lemmaID
	return wordID, lemmaID, true, nil
}

func isNumericSurface(surface string) bool {
	if surface == "" {
		return false
	}
	for _, c := range surface {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// LemmaIDOfWord is a total lookup: every word_id interned through this
// lexicon has an entry.
func (l *Lexicon) LemmaIDOfWord(wordID uint32) (uint32, bool) {
	lemmaID, ok := l.wordToLemma[wordID]
	return lemmaID, ok
}

// WordID returns the word_id for surface, if interned.
func (l *Lexicon) WordID(surface string) (uint32, bool) {
	id, ok := l.wordID[surface]
	return id, ok
}

// LemmaID returns the lemma_id for a lemma surface, if interned.
func (l *Lexicon) LemmaID(lemma string) (uint32, bool) {
	id, ok := l.lemmaID[lemma]
	return id, ok
}

// Size returns the number of interned words.
func (l *Lexicon) Size() int { return len(l.words) }

// jsonForm is the textual persistence shape, field-named to match
// original_source/backend/lexicon.py's save_lexicon_json output so the
// files remain human-inspectable per spec.md §9.
type jsonForm struct {
	WordID        map[string]uint32 `json:"wordID"`
	LemmaID       map[string]uint32 `json:"lemmaID"`
	WordToLemmaID map[string]uint32 `json:"wordToLemmaID"`
}

// Save writes the lexicon's textual form via atomic temp-file + rename
// (spec.md §4.2 / §5).
func (l *Lexicon) Save(path string) error {
	wordToLemma := make(map[string]uint32, len(l.wordToLemma))
	for wid, lid := range l.wordToLemma {
		wordToLemma[strconv.FormatUint(uint64(wid), 10)] = lid
	}
	form := jsonForm{WordID: l.wordID, LemmaID: l.lemmaID, WordToLemmaID: wordToLemma}

	data, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return fmt.Errorf("lexicon: marshal: %w", err)
	}
	return atomicWrite(path, data)
}

// Load reads a lexicon's textual form back into memory. A corrupt file is
// reported, not tolerated (spec.md §4.2: "Corrupt persisted form => refuse
// to start").
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("lexicon: read %s: %w", path, err)
	}

	var form jsonForm
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("lexicon: %w: %v", corpuserrors.ErrCorruptIndex, err)
	}

	l := New()
	l.wordID = form.WordID
	l.wordToLemma = make(map[uint32]uint32, len(form.WordToLemmaID))
	for widStr, lid := range form.WordToLemmaID {
		wid64, err := strconv.ParseUint(widStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("lexicon: %w: bad word id %q", corpuserrors.ErrCorruptIndex, widStr)
		}
		l.wordToLemma[uint32(wid64)] = lid
	}
	if form.LemmaID != nil {
		l.lemmaID = form.LemmaID
	}

	l.words = make([]string, 0, len(l.wordID))
	for w := range l.wordID {
		l.words = append(l.words, w)
	}
	sort.Strings(l.words)

	l.lemmas = make([]string, 0, len(l.lemmaID))
	for lm := range l.lemmaID {
		l.lemmas = append(l.lemmas, lm)
	}

	for _, id := range l.wordID {
		if id >= l.nextWordID {
			l.nextWordID = id + 1
		}
	}
	for _, id := range l.lemmaID {
		if id >= l.nextLemmaID {
			l.nextLemmaID = id + 1
		}
	}
	if l.nextLemmaID == 0 {
		l.nextLemmaID = NumberLemmaID + 1
	}
	return l, nil
}

// RebuildBinaryCache emits the sorted binary form described in spec.md
// §4.2: a header count, then length-prefixed surface strings sorted
// ascending, then parallel i32 lemma ids — enabling the query engine to
// binary-search without parsing JSON.
func (l *Lexicon) RebuildBinaryCache(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("lexicon: mkdir: %w", err)
	}

	words := make([]string, len(l.words))
	copy(words, l.words)
	sort.Strings(words)

	buf := newLEBuffer()
	buf.putU32(uint32(len(words)))
	for _, w := range words {
		buf.putLenPrefixedString(w)
	}
	for _, w := range words {
		lemmaID := l.wordToLemma[l.wordID[w]]
		buf.putI32(int32(lemmaID))
	}

	return atomicWrite(path, buf.bytes())
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("lexicon: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("lexicon: tempfile: %w", err)
	}
	tmpPath := tmp.Name()
	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("lexicon: write: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("lexicon: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("lexicon: close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("lexicon: rename: %w", err)
	}
	return nil
}
