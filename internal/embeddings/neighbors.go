package embeddings

import (
	"context"
	"fmt"
	"sort"

	chromem "github.com/philippgille/chromem-go"
)

// Neighbor is one nearest-neighbor result: a word and its cosine
// similarity to the query vector.
type Neighbor struct {
	Word       string
	Similarity float32
}

// NeighborIndex backs `similar(word)` (spec.md §6) and semantic query
// expansion (spec.md §4.8 step 3) with an in-memory chromem-go collection
// seeded directly from Table's pre-computed vectors — no embedding API
// call is ever made, since every document is added with its Embedding
// field already populated.
type NeighborIndex struct {
	collection *chromem.Collection
	table      *Table
}

// identityEmbeddingFunc is invoked by chromem-go only if a document is
// added without a precomputed Embedding, which NewNeighborIndex never
// does; it exists solely to satisfy GetOrCreateCollection's signature.
func identityEmbeddingFunc(table *Table) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if vec, ok := table.Vector(text); ok {
			return vec, nil
		}
		return nil, fmt.Errorf("embeddings: no vector for %q", text)
	}
}

// NewNeighborIndex builds a chromem-go collection from every word in
// table, so nearest-neighbor search is backed by chromem-go's cosine
// similarity search rather than a hand-rolled linear scan.
func NewNeighborIndex(ctx context.Context, table *Table) (*NeighborIndex, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("words", nil, identityEmbeddingFunc(table))
	if err != nil {
		return nil, fmt.Errorf("embeddings: create collection: %w", err)
	}

	for _, word := range table.Words() {
		vec, ok := table.Vector(word)
		if !ok {
			continue
		}
		doc := chromem.Document{ID: word, Content: word, Embedding: vec}
		if err := collection.AddDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("embeddings: add %q: %w", word, err)
		}
	}

	return &NeighborIndex{collection: collection, table: table}, nil
}

// Neighbors returns up to k nearest neighbors of word with similarity at
// least threshold, sorted descending, excluding word itself (spec.md §8
// scenario S5). Returns an empty slice, never an error, if word has no
// known vector.
func (n *NeighborIndex) Neighbors(ctx context.Context, word string, k int, threshold float32) ([]Neighbor, error) {
	vec, ok := n.table.Vector(word)
	if !ok {
		return nil, nil
	}
	return n.neighborsOfVector(ctx, vec, word, k, threshold)
}

// NeighborsOfVector is the same lookup keyed by an arbitrary vector rather
// than a known word, excluding excludeWord from the results.
func (n *NeighborIndex) NeighborsOfVector(ctx context.Context, vec []float32, excludeWord string, k int, threshold float32) ([]Neighbor, error) {
	return n.neighborsOfVector(ctx, vec, excludeWord, k, threshold)
}

func (n *NeighborIndex) neighborsOfVector(ctx context.Context, vec []float32, excludeWord string, k int, threshold float32) ([]Neighbor, error) {
	if n.collection.Count() == 0 {
		return nil, nil
	}
	// Ask for one extra result since the query word, if present in the
	// collection, will be returned with similarity 1.0 and must be
	// excluded.
	nResults := k + 1
	if nResults > n.collection.Count() {
		nResults = n.collection.Count()
	}
	results, err := n.collection.QueryEmbedding(ctx, vec, nResults, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("embeddings: query: %w", err)
	}

	neighbors := make([]Neighbor, 0, k)
	for _, r := range results {
		if r.ID == excludeWord {
			continue
		}
		if r.Similarity < threshold {
			continue
		}
		neighbors = append(neighbors, Neighbor{Word: r.ID, Similarity: r.Similarity})
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].Similarity > neighbors[j].Similarity })
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}
