// Package query implements the search pipeline: tokenize, map to lemma
// ids, optionally expand via semantic neighbors, retrieve postings,
// combine by AND/OR, score with TF-IDF plus document authority, and
// rank. Grounded on spec.md §4.8; the TF-IDF bookkeeping (df, per-document
// tf, N) mirrors the accounting shape of
// _examples/kkarrenn-devops-gemini-cli-extension/lib/bm25's BM25Index,
// adapted to the spec's exact formula instead of full BM25.
package query

import (
	"context"
	"math"
	"sort"

	"github.com/kkarrenn/searchcore/internal/barrel"
	"github.com/kkarrenn/searchcore/internal/tokenizer"
)

// Mode selects conjunctive or disjunctive combination of posting lists
// (spec.md §4.8 step 5).
type Mode int

const (
	AND Mode = iota
	OR
)

// DefaultExpansionNeighbors, DefaultSimilarityThreshold, and DefaultTopK
// are the spec's suggested defaults (spec.md §4.8).
const (
	DefaultExpansionNeighbors  = 5
	DefaultSimilarityThreshold = 0.6
	DefaultTopK                = 20
)

// Weights are the scoring coefficients from spec.md §4.8 step 6:
// final = alpha*sum_terms + beta*authority(doc) + gamma*matched_ratio.
type Weights struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// DefaultWeights matches spec.md's stated default (alpha=1, beta=1, gamma=0).
var DefaultWeights = Weights{Alpha: 1, Beta: 1, Gamma: 0}

// LexiconLookup resolves a lemma to its lemma id (spec.md §4.8 step 2). The
// engine wires this to the live, in-process *lexicon.Lexicon — reader and
// writer share one process (spec.md §9), so there is no separate on-disk
// round trip on the query path. lexicon.BinaryCache's surface-keyed search
// serves the cold-start persistence format instead (spec.md §4.2).
type LexiconLookup interface {
	LemmaID(lemma string) (uint32, bool)
}

// PostingSource reads merged cold+hot posting lists by lemma id (spec.md
// §4.8 step 4). barrel.Store satisfies this.
type PostingSource interface {
	ReadPostings(lemmaID uint32) (*barrel.PostingList, bool)
}

// AuthoritySource resolves a document's authority score (spec.md §4.8
// step 6).
type AuthoritySource interface {
	Score(docID string) float32
}

// NeighborSource resolves up to k nearest neighbors of a lemma surface by
// cosine similarity (spec.md §4.8 step 3).
type NeighborSource interface {
	Neighbors(ctx context.Context, word string, k int, threshold float32) ([]Neighbor, error)
}

// Neighbor mirrors embeddings.Neighbor without importing the embeddings
// package, so query stays decoupled from the concrete embedding backend
// and can be exercised with a gomock double in tests.
type Neighbor struct {
	Word       string
	Similarity float32
}

// Request is one search call (spec.md §6: search(q, mode, semantic)).
type Request struct {
	Query    string
	Mode     Mode
	Semantic bool
	TopK     int
}

// Hit is one ranked result (spec.md §6's results[] shape).
type Hit struct {
	Rank           int     `json:"rank"`
	DocID          string  `json:"doc_id"`
	Score          float64 `json:"score"`
	TFIDFScore     float64 `json:"tfidf_score"`
	AuthorityScore float64 `json:"pagerank_score"`
	MatchedTerms   int     `json:"matched_terms"`
	TotalTerms     int     `json:"total_terms"`
}

// Response is the full search result (spec.md §6).
type Response struct {
	Hits          []Hit    `json:"results"`
	ExpandedTerms []string `json:"expanded_terms"`
	SearchTimeMS  int64    `json:"search_time_ms"`
}

type term struct {
	lemmaID uint32
	weight  float64
}

// Engine runs the query pipeline over a fixed set of collaborators. N
// (total document count) is supplied by the caller and cached by them —
// the query engine itself is stateless and safe for concurrent use
// (spec.md §5).
type Engine struct {
	Lexicon   LexiconLookup
	Postings  PostingSource
	Authority AuthoritySource
	Neighbors NeighborSource
	Weights   Weights
}

// Search runs the full pipeline described in spec.md §4.8.
func (e *Engine) Search(ctx context.Context, req Request, totalDocs int) Response {
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	tokens := tokenizer.Tokenize(req.Query)

	baseTerms := make([]term, 0, len(tokens))
	baseWords := make([]string, 0, len(tokens))
	seen := make(map[uint32]bool)
	for _, tok := range tokens {
		lemmaID, ok := e.Lexicon.LemmaID(tok.Lemma)
		if !ok || seen[lemmaID] {
			continue
		}
		seen[lemmaID] = true
		baseTerms = append(baseTerms, term{lemmaID: lemmaID, weight: 1.0})
		baseWords = append(baseWords, tok.Lemma)
	}

	expandedWeight := make(map[uint32]float64)
	expandedWord := make(map[uint32]string)
	var expandedTerms []string
	if req.Semantic && e.Neighbors != nil {
		for _, word := range baseWords {
			neighbors, err := e.Neighbors.Neighbors(ctx, word, DefaultExpansionNeighbors, DefaultSimilarityThreshold)
			if err != nil {
				continue
			}
			for _, n := range neighbors {
				lemmaID, ok := e.Lexicon.LemmaID(n.Word)
				if !ok || seen[lemmaID] {
					continue
				}
				if existing, ok := expandedWeight[lemmaID]; !ok || float64(n.Similarity) > existing {
					expandedWeight[lemmaID] = float64(n.Similarity)
					expandedWord[lemmaID] = n.Word
				}
			}
		}
		for lemmaID, weight := range expandedWeight {
			baseTerms = append(baseTerms, term{lemmaID: lemmaID, weight: weight})
			expandedTerms = append(expandedTerms, expandedWord[lemmaID])
		}
	}

	type termPostings struct {
		t        term
		postings *barrel.PostingList
		isBase   bool
	}
	allTerms := make([]termPostings, 0, len(baseTerms))
	for _, t := range baseTerms {
		pl, _ := e.Postings.ReadPostings(t.lemmaID)
		_, isExpanded := expandedWeight[t.lemmaID]
		allTerms = append(allTerms, termPostings{t: t, postings: pl, isBase: !isExpanded})
	}

	docScores := make(map[string]float64)
	docMatched := make(map[string]int)
	docsByBaseTerm := make([]map[string]bool, 0)
	docsByAnyTerm := make([]map[string]bool, 0)

	for _, tp := range allTerms {
		if tp.postings == nil {
			if tp.isBase {
				docsByBaseTerm = append(docsByBaseTerm, map[string]bool{})
			}
			docsByAnyTerm = append(docsByAnyTerm, map[string]bool{})
			continue
		}
		df := tp.postings.DF
		docsHere := make(map[string]bool, len(tp.postings.Postings))
		for _, p := range tp.postings.Postings {
			docsHere[p.DocID] = true
			tfIdf := (1 + math.Log(float64(p.TF))) * math.Log(float64(totalDocs)/float64(df))
			docScores[p.DocID] += tp.t.weight * tfIdf
			if tp.isBase {
				docMatched[p.DocID]++
			}
		}
		if tp.isBase {
			docsByBaseTerm = append(docsByBaseTerm, docsHere)
		}
		docsByAnyTerm = append(docsByAnyTerm, docsHere)
	}

	// AND mode requires every base term's merged list; expanded terms
	// never admit new documents in AND, only contribute to scoring of
	// docs already qualifying (spec.md §4.8 step 5).
	var candidateDocs map[string]bool
	switch req.Mode {
	case AND:
		candidateDocs = intersectAll(docsByBaseTerm)
	default:
		candidateDocs = unionAll(docsByAnyTerm)
	}

	totalBaseTerms := 0
	for _, tp := range allTerms {
		if tp.isBase {
			totalBaseTerms++
		}
	}

	hits := make([]Hit, 0, len(candidateDocs))
	for docID := range candidateDocs {
		sumTerms := docScores[docID]
		matched := docMatched[docID]
		matchedRatio := 0.0
		if totalBaseTerms > 0 {
			matchedRatio = float64(matched) / float64(totalBaseTerms)
		}
		authority := float64(e.scoreAuthority(docID))
		final := e.Weights.Alpha*sumTerms + e.Weights.Beta*authority + e.Weights.Gamma*matchedRatio

		hits = append(hits, Hit{
			DocID:          docID,
			Score:          final,
			TFIDFScore:     sumTerms,
			AuthorityScore: authority,
			MatchedTerms:   matched,
			TotalTerms:     totalBaseTerms,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}

	return Response{Hits: hits, ExpandedTerms: dedupeStrings(expandedTerms)}
}

func (e *Engine) scoreAuthority(docID string) float32 {
	if e.Authority == nil {
		return 0
	}
	return e.Authority.Score(docID)
}

func intersectAll(sets []map[string]bool) map[string]bool {
	if len(sets) == 0 {
		return map[string]bool{}
	}
	result := make(map[string]bool)
	for doc := range sets[0] {
		result[doc] = true
	}
	for _, set := range sets[1:] {
		for doc := range result {
			if !set[doc] {
				delete(result, doc)
			}
		}
	}
	return result
}

func unionAll(sets []map[string]bool) map[string]bool {
	result := make(map[string]bool)
	for _, set := range sets {
		for doc := range set {
			result[doc] = true
		}
	}
	return result
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
