package embeddings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func repeatedDocs(phrase []string, n int) [][]string {
	docs := make([][]string, n)
	for i := range docs {
		docs[i] = phrase
	}
	return docs
}

func TestBuildNgramIndexFindsFrequentBigram(t *testing.T) {
	docs := repeatedDocs([]string{"covid", "vaccine", "trial"}, 10)
	idx, err := BuildNgramIndex(context.Background(), docs, 2, 5, 1000)
	require.NoError(t, err)

	got := idx.Suggest([]string{"covid", "vac"}, 5, nil)
	require.NotEmpty(t, got)
	require.Equal(t, "covid vaccine", got[0].Phrase)
	require.Equal(t, 10, got[0].Count)
}

func TestBuildNgramIndexDropsRareBigrams(t *testing.T) {
	docs := repeatedDocs([]string{"rare", "phrase"}, 2)
	idx, err := BuildNgramIndex(context.Background(), docs, 2, 5, 1000)
	require.NoError(t, err)

	got := idx.Suggest([]string{"rare", "phr"}, 5, nil)
	require.Empty(t, got)
}

func TestSuggestFallsBackToSingleWordCompletion(t *testing.T) {
	idx := &NgramIndex{prefixes: make(map[string][]Phrase)}
	fallback := func(prefix string, k int) []WordDF {
		return []WordDF{{Word: "vaccine", DF: 7}}
	}
	got := idx.Suggest([]string{"covid", "vac"}, 5, fallback)
	require.Len(t, got, 1)
	require.Equal(t, "covid vaccine", got[0].Phrase)
	require.Equal(t, 7, got[0].Count)
}

func TestSuggestShortensLastTokenProgressively(t *testing.T) {
	docs := repeatedDocs([]string{"acute", "respiratory", "syndrome"}, 10)
	idx, err := BuildNgramIndex(context.Background(), docs, 1, 5, 1000)
	require.NoError(t, err)

	got := idx.Suggest([]string{"acute", "re"}, 5, nil)
	require.NotEmpty(t, got)
}

func TestNgramIndexSaveLoadRoundTrip(t *testing.T) {
	docs := repeatedDocs([]string{"covid", "vaccine"}, 10)
	idx, err := BuildNgramIndex(context.Background(), docs, 2, 5, 1000)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ngram_autocomplete.json")
	require.NoError(t, idx.Save(path))

	loaded, err := LoadNgramIndex(path)
	require.NoError(t, err)
	got := loaded.Suggest([]string{"covid", "vac"}, 5, nil)
	require.NotEmpty(t, got)
}

func TestLoadNgramIndexMissingFileIsEmpty(t *testing.T) {
	idx, err := LoadNgramIndex(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Empty(t, idx.Suggest([]string{"a"}, 5, nil))
}
