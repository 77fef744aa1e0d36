// Package engine wires the lexicon, barrel store, embeddings, authority
// scores, and indexer into one value passed to request handlers, replacing
// the original design's process-global singletons (spec.md §9: "Global
// mutable state ... becomes an explicit Engine value constructed at
// startup and passed to request handlers").
//
// Concurrency follows spec.md §5: the indexer is single-writer, and reads
// (search, autocomplete, similar) may run concurrently with each other;
// a read waits while a write holds the exclusive lock, and a write waits
// for in-flight reads. Rather than deep-cloning an immutable lexicon snapshot
// on every write — expensive for a structure that grows by a handful of
// entries per document — Engine guards the shared lexicon/barrel state
// with a RWMutex: writers take the exclusive lock, readers take the
// shared lock. This is a direct substitution for the design note's
// "atomic reference swap" for the same single-writer/many-reader
// guarantee; see the internal/engine entry in DESIGN.md.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kkarrenn/searchcore/internal/authority"
	"github.com/kkarrenn/searchcore/internal/barrel"
	"github.com/kkarrenn/searchcore/internal/config"
	"github.com/kkarrenn/searchcore/internal/embeddings"
	"github.com/kkarrenn/searchcore/internal/forwardindex"
	"github.com/kkarrenn/searchcore/internal/indexer"
	"github.com/kkarrenn/searchcore/internal/lexicon"
	"github.com/kkarrenn/searchcore/internal/metadata"
	"github.com/kkarrenn/searchcore/internal/query"
)

// Engine is the fully-wired searchcore instance: every operation in
// spec.md §6 is a method on this type.
type Engine struct {
	mu sync.RWMutex

	cfg *config.Config

	lex       *lexicon.Lexicon
	barrels   *barrel.Store
	metadata  *metadata.Store
	scores    authority.Scores
	prefixes  *embeddings.PrefixIndex
	ngrams    *embeddings.NgramIndex
	neighbors *embeddings.NeighborIndex

	indexer *indexer.Indexer
	query   *query.Engine

	docCount int
}

// Open loads every persisted file described in spec.md §6 from cfg's data
// root, building tolerant-empty state for anything missing, and wires the
// query engine on top of it.
func Open(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	lex, err := lexicon.Load(cfg.Lexicon())
	if err != nil {
		return nil, fmt.Errorf("engine: load lexicon: %w", err)
	}

	barrels, err := barrel.Open(cfg.Indexes(), cfg.Barrels(), cfg.BarrelsBinary())
	if err != nil {
		return nil, fmt.Errorf("engine: open barrels: %w", err)
	}

	meta, err := metadata.Load(cfg.Metadata())
	if err != nil {
		return nil, fmt.Errorf("engine: load metadata: %w", err)
	}

	records, err := forwardindex.Scan(cfg.ForwardIndex())
	if err != nil {
		return nil, fmt.Errorf("engine: scan forward index: %w", err)
	}
	scores, err := authority.Load(cfg.DocScores())
	if err != nil {
		return nil, fmt.Errorf("engine: load authority scores: %w", err)
	}
	if len(scores) == 0 && len(records) > 0 {
		scores = authority.Compute(records)
	}

	table, err := embeddings.LoadTable(cfg.EmbeddingsVocab(), cfg.EmbeddingsBinary())
	if err != nil {
		return nil, fmt.Errorf("engine: load embedding table: %w", err)
	}
	neighbors, err := embeddings.NewNeighborIndex(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("engine: build neighbor index: %w", err)
	}

	prefixes, err := embeddings.LoadPrefixIndex(cfg.AutocompleteIndex())
	if err != nil {
		return nil, fmt.Errorf("engine: load prefix autocomplete index: %w", err)
	}
	ngrams, err := embeddings.LoadNgramIndex(cfg.NgramAutocompleteIndex())
	if err != nil {
		return nil, fmt.Errorf("engine: load ngram autocomplete index: %w", err)
	}

	idx := indexer.New(cfg, lex, barrels, meta)

	e := &Engine{
		cfg:       cfg,
		lex:       lex,
		barrels:   barrels,
		metadata:  meta,
		scores:    scores,
		prefixes:  prefixes,
		ngrams:    ngrams,
		neighbors: neighbors,
		indexer:   idx,
		docCount:  len(records),
	}
	e.query = &query.Engine{
		Lexicon:   lex,
		Postings:  barrels,
		Authority: scores,
		Neighbors: neighborAdapter{neighbors},
		Weights:   query.DefaultWeights,
	}
	return e, nil
}

// neighborAdapter bridges embeddings.NeighborIndex's []embeddings.Neighbor
// return type to query.NeighborSource's []query.Neighbor, keeping the
// query package decoupled from the concrete embeddings backend.
type neighborAdapter struct {
	idx *embeddings.NeighborIndex
}

func (a neighborAdapter) Neighbors(ctx context.Context, word string, k int, threshold float32) ([]query.Neighbor, error) {
	found, err := a.idx.Neighbors(ctx, word, k, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]query.Neighbor, len(found))
	for i, n := range found {
		out[i] = query.Neighbor{Word: n.Word, Similarity: n.Similarity}
	}
	return out, nil
}

// Search runs a query against the current snapshot (spec.md §6's search
// operation).
func (e *Engine) Search(ctx context.Context, req query.Request) query.Response {
	e.mu.RLock()
	defer e.mu.RUnlock()
	start := time.Now()
	resp := e.query.Search(ctx, req, e.docCount)
	resp.SearchTimeMS = time.Since(start).Milliseconds()
	return resp
}

// AutocompleteSuggestion is one entry of spec.md §6's autocomplete
// response.
type AutocompleteSuggestion struct {
	Word string
	DF   uint32
}

// MaxAutocompleteSuggestions bounds autocomplete responses (spec.md §6:
// "up to 5").
const MaxAutocompleteSuggestions = 5

// Autocomplete implements spec.md §6's autocomplete(prefix) operation: a
// single-word prefix lookup, or — for a multi-token prefix — the n-gram
// phrase index falling back to single-word completion of the final token
// (spec.md §4.5).
func (e *Engine) Autocomplete(prefix string) []AutocompleteSuggestion {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tokens := splitWords(prefix)
	if len(tokens) <= 1 {
		word := prefix
		if len(tokens) == 1 {
			word = tokens[0]
		}
		matches := e.prefixes.Suggest(word, MaxAutocompleteSuggestions)
		out := make([]AutocompleteSuggestion, len(matches))
		for i, m := range matches {
			out[i] = AutocompleteSuggestion{Word: m.Word, DF: m.DF}
		}
		return out
	}

	wordCompletions := func(p string, k int) []embeddings.WordDF {
		return e.prefixes.Suggest(p, k)
	}
	phrases := e.ngrams.Suggest(tokens, MaxAutocompleteSuggestions, wordCompletions)
	out := make([]AutocompleteSuggestion, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, AutocompleteSuggestion{Word: p.Phrase, DF: uint32(p.Count)})
		if len(out) == MaxAutocompleteSuggestions {
			break
		}
	}
	return out
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

// MaxSimilarWords bounds similar() responses (spec.md §6: "up to 10").
const MaxSimilarWords = 10

// Similar implements spec.md §6's similar(word) operation.
func (e *Engine) Similar(ctx context.Context, word string) ([]embeddings.Neighbor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.neighbors.Neighbors(ctx, word, MaxSimilarWords, -1)
}

// IndexDocument implements spec.md §6's index_document(body) operation,
// then re-derives authority scores and document count so subsequent
// searches see the new document (spec.md §8 scenario S3).
func (e *Engine) IndexDocument(req indexer.Request) (*indexer.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.indexer.IndexDocument(req)
	if err != nil {
		return nil, err
	}

	records, err := forwardindex.Scan(e.cfg.ForwardIndex())
	if err != nil {
		return nil, fmt.Errorf("engine: rescan forward index: %w", err)
	}
	e.scores = authority.Compute(records)
	if err := e.scores.Save(e.cfg.DocScores()); err != nil {
		return nil, fmt.Errorf("engine: save authority scores: %w", err)
	}
	e.docCount = len(records)
	e.query.Authority = e.scores

	return res, nil
}

// DocCount reports the number of indexed documents backing the current
// snapshot.
func (e *Engine) DocCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docCount
}

// Config returns the data-root configuration this engine was opened with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}
