package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// DefaultMinPhraseCount and DefaultMaxPhrasesPerType mirror
// original_source/backend/py/ngram_builder.py's min_freq=5, max_ngrams.
const (
	DefaultMinPhraseCount    = 5
	DefaultMaxPhrasesPerType = 50000
	maxEntriesPerPrefix      = 10
)

// Phrase is one bigram or trigram completion with its corpus frequency.
type Phrase struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// NgramIndex maps a phrase prefix (a whole first word, or a whole first
// word plus a partial second word) to its top completions, built the way
// original_source/backend/py/ngram_builder.py's build_autocomplete_index
// does (spec.md §4.5).
type NgramIndex struct {
	prefixes map[string][]Phrase
}

// BuildNgramIndex shards docs (each a slice of already-tokenized surface
// words in document order) across workers, counts bigram/trigram
// frequencies per shard, and reduces the per-shard counters into one
// global count — the same shard-then-reduce shape as ngram_builder.py's
// ProcessPoolExecutor fan-out, expressed with errgroup instead of a
// process pool.
func BuildNgramIndex(ctx context.Context, docs [][]string, workers, minCount, maxPerType int) (*NgramIndex, error) {
	if workers < 1 {
		workers = 1
	}
	if minCount < 1 {
		minCount = DefaultMinPhraseCount
	}
	if maxPerType < 1 {
		maxPerType = DefaultMaxPhrasesPerType
	}

	shards := shardDocs(docs, workers)
	partials := make([]map[[2]string]int, len(shards))
	partialsTri := make([]map[[3]string]int, len(shards))

	g, _ := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			bigrams, trigrams := countShard(shard)
			partials[i] = bigrams
			partialsTri[i] = trigrams
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("embeddings: ngram build: %w", err)
	}

	bigrams := make(map[[2]string]int)
	trigrams := make(map[[3]string]int)
	for _, p := range partials {
		for k, v := range p {
			bigrams[k] += v
		}
	}
	for _, p := range partialsTri {
		for k, v := range p {
			trigrams[k] += v
		}
	}

	phrases := collectPhrases(bigrams, trigrams, minCount, maxPerType)
	return &NgramIndex{prefixes: buildPrefixMap(phrases)}, nil
}

func shardDocs(docs [][]string, workers int) [][][]string {
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		return [][][]string{docs}
	}
	shards := make([][][]string, workers)
	for i, doc := range docs {
		idx := i % workers
		shards[idx] = append(shards[idx], doc)
	}
	return shards
}

func countShard(docs [][]string) (map[[2]string]int, map[[3]string]int) {
	bigrams := make(map[[2]string]int)
	trigrams := make(map[[3]string]int)
	for _, tokens := range docs {
		for i := 0; i+1 < len(tokens); i++ {
			bigrams[[2]string{tokens[i], tokens[i+1]}]++
		}
		for i := 0; i+2 < len(tokens); i++ {
			trigrams[[3]string{tokens[i], tokens[i+1], tokens[i+2]}]++
		}
	}
	return bigrams, trigrams
}

func collectPhrases(bigrams map[[2]string]int, trigrams map[[3]string]int, minCount, maxPerType int) []Phrase {
	bi := make([]Phrase, 0, len(bigrams))
	for k, c := range bigrams {
		if c >= minCount {
			bi = append(bi, Phrase{Phrase: k[0] + " " + k[1], Count: c})
		}
	}
	sort.Slice(bi, func(i, j int) bool { return bi[i].Count > bi[j].Count })
	if len(bi) > maxPerType {
		bi = bi[:maxPerType]
	}

	tri := make([]Phrase, 0, len(trigrams))
	for k, c := range trigrams {
		if c >= minCount {
			tri = append(tri, Phrase{Phrase: k[0] + " " + k[1] + " " + k[2], Count: c})
		}
	}
	sort.Slice(tri, func(i, j int) bool { return tri[i].Count > tri[j].Count })
	if len(tri) > maxPerType {
		tri = tri[:maxPerType]
	}

	phrases := append(bi, tri...)
	sort.Slice(phrases, func(i, j int) bool { return phrases[i].Count > phrases[j].Count })
	return phrases
}

// buildPrefixMap implements ngram_builder.py's build_autocomplete_index:
// every phrase contributes its first word's character prefixes, and —
// for multi-word phrases — the first full word plus the second word's
// character prefixes, each prefix capped at maxEntriesPerPrefix entries
// (first-come, since phrases arrive sorted by count descending).
func buildPrefixMap(phrases []Phrase) map[string][]Phrase {
	index := make(map[string][]Phrase)
	prefixCounts := make(map[string]int)

	addEntry := func(prefix string, p Phrase) {
		if prefixCounts[prefix] >= maxEntriesPerPrefix {
			return
		}
		index[prefix] = append(index[prefix], p)
		prefixCounts[prefix]++
	}

	for _, p := range phrases {
		words := strings.Fields(p.Phrase)
		if len(words) == 0 {
			continue
		}
		for i := 2; i <= len(words[0]); i++ {
			addEntry(words[0][:i], p)
		}
		if len(words) > 1 {
			base := words[0]
			for i := 1; i <= len(words[1]); i++ {
				addEntry(base+" "+words[1][:i], p)
			}
		}
	}
	return index
}

// Suggest implements spec.md §4.5's multi-word lookup: try the exact
// joined-token prefix, then progressively shorter prefixes of the last
// token, falling back to single-word completion of the final token (via
// wordCompletions, typically PrefixIndex.Suggest) appended to the earlier
// tokens.
func (idx *NgramIndex) Suggest(tokens []string, k int, wordCompletions func(prefix string, k int) []WordDF) []Phrase {
	if len(tokens) == 0 {
		return nil
	}
	head := strings.Join(tokens[:len(tokens)-1], " ")
	last := tokens[len(tokens)-1]

	for n := len(last); n >= 1; n-- {
		candidate := last[:n]
		query := candidate
		if head != "" {
			query = head + " " + candidate
		}
		if entries, ok := idx.prefixes[query]; ok {
			out := make([]Phrase, 0, k)
			for _, e := range entries {
				out = append(out, e)
				if len(out) == k {
					break
				}
			}
			return out
		}
	}

	if wordCompletions == nil {
		return nil
	}
	words := wordCompletions(last, k)
	out := make([]Phrase, 0, len(words))
	for _, w := range words {
		phrase := w.Word
		if head != "" {
			phrase = head + " " + w.Word
		}
		out = append(out, Phrase{Phrase: phrase, Count: int(w.DF)})
	}
	return out
}

// Save persists the phrase prefix index (spec.md §6:
// indexes/ngram_autocomplete.json).
func (idx *NgramIndex) Save(path string) error {
	data, err := json.MarshalIndent(idx.prefixes, "", "  ")
	if err != nil {
		return fmt.Errorf("embeddings: marshal ngram index: %w", err)
	}
	return atomicWrite(path, data)
}

// LoadNgramIndex reads a previously saved phrase prefix index. A missing
// file yields an empty index; a malformed one is fatal.
func LoadNgramIndex(path string) (*NgramIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NgramIndex{prefixes: make(map[string][]Phrase)}, nil
		}
		return nil, fmt.Errorf("embeddings: read %s: %w", path, err)
	}
	var prefixes map[string][]Phrase
	if err := json.Unmarshal(data, &prefixes); err != nil {
		return nil, fmt.Errorf("embeddings: %w: ngram_autocomplete.json: %v", corpuserrors.ErrCorruptIndex, err)
	}
	return &NgramIndex{prefixes: prefixes}, nil
}
