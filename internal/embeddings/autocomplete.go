package embeddings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// TwoCharLimit and ThreeCharLimit are the per-prefix-group truncation
// sizes from spec.md §4.5.
const (
	TwoCharLimit   = 100
	ThreeCharLimit = 50
)

// WordDF is a (word, document frequency) pair, the unit the autocomplete
// index groups and sorts.
type WordDF struct {
	Word string `json:"w"`
	DF   uint32 `json:"d"`
}

// PrefixIndex maps a 2- or 3-character prefix to its top-K words by df
// descending (spec.md §4.5).
type PrefixIndex struct {
	groups map[string][]WordDF
}

// BuildPrefixIndex groups words of length >= 2 by their 2-char and 3-char
// prefixes, sorts each group by df descending, and truncates to
// TwoCharLimit / ThreeCharLimit entries.
func BuildPrefixIndex(words []WordDF) *PrefixIndex {
	groups := make(map[string][]WordDF)
	for _, w := range words {
		word := strings.ToLower(w.Word)
		if len(word) < 2 || !isAlpha(word) {
			continue
		}
		p2 := word[:2]
		groups[p2] = append(groups[p2], WordDF{Word: word, DF: w.DF})
		if len(word) >= 3 {
			p3 := word[:3]
			groups[p3] = append(groups[p3], WordDF{Word: word, DF: w.DF})
		}
	}

	for prefix, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].DF != entries[j].DF {
				return entries[i].DF > entries[j].DF
			}
			return entries[i].Word < entries[j].Word
		})
		limit := ThreeCharLimit
		if len(prefix) == 2 {
			limit = TwoCharLimit
		}
		if len(entries) > limit {
			entries = entries[:limit]
		}
		groups[prefix] = entries
	}

	return &PrefixIndex{groups: groups}
}

func isAlpha(s string) bool {
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return len(s) > 0
}

// Suggest returns up to k words starting with prefix, by df descending
// (spec.md §4.5 lookup). Picks the 2- or 3-char group depending on
// prefix length, then filters to entries actually starting with the full
// prefix.
func (p *PrefixIndex) Suggest(prefix string, k int) []WordDF {
	prefix = strings.ToLower(prefix)
	if len(prefix) < 2 {
		return nil
	}
	groupKey := prefix[:2]
	if len(prefix) >= 3 {
		groupKey = prefix[:3]
	}
	entries, ok := p.groups[groupKey]
	if !ok {
		return nil
	}

	out := make([]WordDF, 0, k)
	for _, e := range entries {
		if !strings.HasPrefix(e.Word, prefix) {
			continue
		}
		out = append(out, e)
		if len(out) == k {
			break
		}
	}
	return out
}

// Save persists the prefix index as prefix -> []WordDF (spec.md §6:
// embeddings/autocomplete.json).
func (p *PrefixIndex) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("embeddings: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(p.groups, "", "  ")
	if err != nil {
		return fmt.Errorf("embeddings: marshal autocomplete index: %w", err)
	}
	return atomicWrite(path, data)
}

// LoadPrefixIndex reads a previously saved prefix index. A missing file
// yields an empty index; a malformed one is fatal.
func LoadPrefixIndex(path string) (*PrefixIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PrefixIndex{groups: make(map[string][]WordDF)}, nil
		}
		return nil, fmt.Errorf("embeddings: read %s: %w", path, err)
	}
	var groups map[string][]WordDF
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("embeddings: %w: autocomplete.json: %v", corpuserrors.ErrCorruptIndex, err)
	}
	return &PrefixIndex{groups: groups}, nil
}
