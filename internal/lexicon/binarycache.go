package lexicon

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// BinaryCache is the read-only, binary-searchable on-disk form of the
// lexicon: a sorted array of surfaces each paired with its lemma id. The
// engine's live query path resolves lemmas through the in-memory Lexicon,
// not through this cache.
type BinaryCache struct {
	words    []string
	lemmaIDs []int32
}

// LoadBinaryCache parses the layout written by Lexicon.RebuildBinaryCache:
// [u32 count][(u16 len, bytes) ...][i32 lemma_id ...], entries sorted by
// surface. A truncated or malformed file is CorruptIndex, never tolerated
// (spec.md §4.2/§7).
func LoadBinaryCache(path string) (*BinaryCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &BinaryCache{}, nil
		}
		return nil, fmt.Errorf("lexicon: read binary cache: %w", err)
	}
	return parseBinaryCache(data)
}

func parseBinaryCache(data []byte) (*BinaryCache, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("lexicon: %w: truncated header", corpuserrors.ErrCorruptIndex)
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	offset := 4

	words := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("lexicon: %w: truncated string length", corpuserrors.ErrCorruptIndex)
		}
		strLen := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2
		if offset+strLen > len(data) {
			return nil, fmt.Errorf("lexicon: %w: truncated string body", corpuserrors.ErrCorruptIndex)
		}
		words = append(words, string(data[offset:offset+strLen]))
		offset += strLen
	}

	lemmaIDs := make([]int32, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(data) {
			return nil, fmt.Errorf("lexicon: %w: truncated lemma ids", corpuserrors.ErrCorruptIndex)
		}
		lemmaIDs = append(lemmaIDs, int32(binary.LittleEndian.Uint32(data[offset:offset+4])))
		offset += 4
	}

	return &BinaryCache{words: words, lemmaIDs: lemmaIDs}, nil
}

// LemmaID performs a binary search over the sorted surfaces, returning the
// matching lemma id. A surface not present yields (0, false) — never an
// error (spec.md §4.8: "tokens absent from the lexicon produce no lemma").
func (c *BinaryCache) LemmaID(surface string) (uint32, bool) {
	n := len(c.words)
	idx := sort.Search(n, func(i int) bool { return c.words[i] >= surface })
	if idx < n && c.words[idx] == surface {
		return uint32(c.lemmaIDs[idx]), true
	}
	return 0, false
}

// Rewrite re-emits the binary form currently held in memory. Used to
// verify the round-trip invariant (spec.md §8 invariant 8): loading
// lexicon.bin and re-emitting it must produce a byte-identical file.
func (c *BinaryCache) Rewrite() []byte {
	buf := newLEBuffer()
	buf.putU32(uint32(len(c.words)))
	for _, w := range c.words {
		buf.putLenPrefixedString(w)
	}
	for _, id := range c.lemmaIDs {
		buf.putI32(id)
	}
	return buf.bytes()
}

// Len returns the number of entries in the cache.
func (c *BinaryCache) Len() int { return len(c.words) }
