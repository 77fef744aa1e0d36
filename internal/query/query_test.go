package query_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/kkarrenn/searchcore/internal/authority"
	"github.com/kkarrenn/searchcore/internal/barrel"
	"github.com/kkarrenn/searchcore/internal/config"
	"github.com/kkarrenn/searchcore/internal/forwardindex"
	"github.com/kkarrenn/searchcore/internal/indexer"
	"github.com/kkarrenn/searchcore/internal/lexicon"
	"github.com/kkarrenn/searchcore/internal/metadata"
	"github.com/kkarrenn/searchcore/internal/query"
	"github.com/kkarrenn/searchcore/internal/query/mocks"
)

type fixture struct {
	lex       *lexicon.Lexicon
	barrels   *barrel.Store
	authority authority.Scores
	docCount  int
}

func newFixture(t *testing.T, docs map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	require.NoError(t, cfg.EnsureDirs())

	lex := lexicon.New()
	store, err := barrel.Open(cfg.Indexes(), cfg.Barrels(), cfg.BarrelsBinary())
	require.NoError(t, err)
	meta := metadata.New()
	idx := indexer.New(cfg, lex, store, meta)

	for docID, body := range docs {
		_, err := idx.IndexDocument(indexer.Request{DocID: docID, Body: body})
		require.NoError(t, err)
	}

	records, err := forwardindex.Scan(cfg.ForwardIndex())
	require.NoError(t, err)
	scores := authority.Compute(records)

	return &fixture{lex: lex, barrels: store, authority: scores, docCount: len(docs)}
}

// S1: empty corpus, AND query, semantic=true -> zero results, no error.
func TestSearchEmptyCorpusReturnsEmptyNotError(t *testing.T) {
	f := newFixture(t, map[string]string{})
	engine := &query.Engine{Lexicon: f.lex, Postings: f.barrels, Authority: f.authority, Weights: query.DefaultWeights}

	resp := engine.Search(context.Background(), query.Request{Query: "covid", Mode: query.AND, Semantic: true}, f.docCount)
	require.Empty(t, resp.Hits)
}

// S2: d1="covid vaccine trial", d2="covid pandemic".
// AND("covid vaccine") -> [d1]; OR -> [d1, d2] with d1 scored higher.
func TestSearchANDandORScenarioS2(t *testing.T) {
	f := newFixture(t, map[string]string{
		"d1": "covid vaccine trial",
		"d2": "covid pandemic",
	})
	engine := &query.Engine{Lexicon: f.lex, Postings: f.barrels, Authority: f.authority, Weights: query.DefaultWeights}

	andResp := engine.Search(context.Background(), query.Request{Query: "covid vaccine", Mode: query.AND}, f.docCount)
	require.Len(t, andResp.Hits, 1)
	require.Equal(t, "d1", andResp.Hits[0].DocID)

	orResp := engine.Search(context.Background(), query.Request{Query: "covid vaccine", Mode: query.OR}, f.docCount)
	require.Len(t, orResp.Hits, 2)
	require.Equal(t, "d1", orResp.Hits[0].DocID)
	require.Equal(t, "d2", orResp.Hits[1].DocID)
	require.Greater(t, orResp.Hits[0].Score, orResp.Hits[1].Score)
}

// Invariant 9: AND result set is a subset of OR result set, semantic=false.
func TestSearchANDIsSubsetOfOR(t *testing.T) {
	f := newFixture(t, map[string]string{
		"d1": "covid vaccine trial results",
		"d2": "covid pandemic response",
		"d3": "vaccine trial delay",
	})
	engine := &query.Engine{Lexicon: f.lex, Postings: f.barrels, Authority: f.authority, Weights: query.DefaultWeights}

	andResp := engine.Search(context.Background(), query.Request{Query: "covid vaccine trial", Mode: query.AND}, f.docCount)
	orResp := engine.Search(context.Background(), query.Request{Query: "covid vaccine trial", Mode: query.OR}, f.docCount)

	orDocs := make(map[string]bool)
	for _, h := range orResp.Hits {
		orDocs[h.DocID] = true
	}
	for _, h := range andResp.Hits {
		require.True(t, orDocs[h.DocID], "AND result %s must appear in OR results", h.DocID)
	}
}

// Invariant 6: rank values are 1..N contiguous and strictly increasing.
func TestSearchRanksAreContiguous(t *testing.T) {
	f := newFixture(t, map[string]string{
		"d1": "covid vaccine trial",
		"d2": "covid pandemic",
		"d3": "vaccine shortage",
	})
	engine := &query.Engine{Lexicon: f.lex, Postings: f.barrels, Authority: f.authority, Weights: query.DefaultWeights}

	resp := engine.Search(context.Background(), query.Request{Query: "covid vaccine", Mode: query.OR}, f.docCount)
	for i, h := range resp.Hits {
		require.Equal(t, i+1, h.Rank)
	}
}

// Scenario S3 at the query level: index d3, then immediately search for one
// of its terms and find it present.
func TestSearchFindsJustIndexedDocument(t *testing.T) {
	cfg := config.Default(t.TempDir())
	require.NoError(t, cfg.EnsureDirs())
	lex := lexicon.New()
	store, err := barrel.Open(cfg.Indexes(), cfg.Barrels(), cfg.BarrelsBinary())
	require.NoError(t, err)
	meta := metadata.New()
	idx := indexer.New(cfg, lex, store, meta)

	_, err = idx.IndexDocument(indexer.Request{DocID: "d1", Body: "covid vaccine trial"})
	require.NoError(t, err)
	_, err = idx.IndexDocument(indexer.Request{DocID: "d3", Body: "covid vaccine trial"})
	require.NoError(t, err)

	engine := &query.Engine{Lexicon: lex, Postings: store, Weights: query.DefaultWeights}
	resp := engine.Search(context.Background(), query.Request{Query: "vaccine", Mode: query.AND}, 2)

	found := false
	for _, h := range resp.Hits {
		if h.DocID == "d3" {
			found = true
		}
	}
	require.True(t, found)
}

// TopK default and explicit truncation.
func TestSearchRespectsTopK(t *testing.T) {
	f := newFixture(t, map[string]string{
		"d1": "covid vaccine",
		"d2": "covid trial",
		"d3": "covid pandemic",
	})
	engine := &query.Engine{Lexicon: f.lex, Postings: f.barrels, Authority: f.authority, Weights: query.DefaultWeights}

	resp := engine.Search(context.Background(), query.Request{Query: "covid", Mode: query.OR, TopK: 2}, f.docCount)
	require.Len(t, resp.Hits, 2)
}

// Semantic expansion path exercised with a mocked neighbor source, grounded
// on the cloudrun/mocks gomock idiom: a query for a known base term with no
// direct posting overlap with d1 still surfaces d1 via a semantically
// related expanded term.
func TestSearchSemanticExpansionFindsRelatedDocument(t *testing.T) {
	f := newFixture(t, map[string]string{
		"d0": "shortage report",
		"d1": "vaccine trial",
	})

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	neighbors := mocks.NewMockNeighborSource(ctrl)
	neighbors.EXPECT().
		Neighbors(gomock.Any(), "shortage", query.DefaultExpansionNeighbors, float32(query.DefaultSimilarityThreshold)).
		Return([]query.Neighbor{{Word: "vaccine", Similarity: 0.81}}, nil)

	engine := &query.Engine{Lexicon: f.lex, Postings: f.barrels, Authority: f.authority, Neighbors: neighbors, Weights: query.DefaultWeights}

	resp := engine.Search(context.Background(), query.Request{Query: "shortage", Mode: query.OR, Semantic: true}, f.docCount)
	require.Len(t, resp.Hits, 2)
	docIDs := []string{resp.Hits[0].DocID, resp.Hits[1].DocID}
	require.Contains(t, docIDs, "d0")
	require.Contains(t, docIDs, "d1")
	require.Contains(t, resp.ExpandedTerms, "vaccine")
}

func TestSearchUnknownWordIsEmptyNotError(t *testing.T) {
	f := newFixture(t, map[string]string{"d1": "covid vaccine"})
	engine := &query.Engine{Lexicon: f.lex, Postings: f.barrels, Authority: f.authority, Weights: query.DefaultWeights}

	resp := engine.Search(context.Background(), query.Request{Query: "xyzzynonexistent", Mode: query.OR}, f.docCount)
	require.Empty(t, resp.Hits)
}
