package embeddings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPrefixIndexGroupsAndSorts(t *testing.T) {
	words := []WordDF{
		{Word: "covid", DF: 10},
		{Word: "coven", DF: 2},
		{Word: "cover", DF: 5},
		{Word: "cow", DF: 1},
	}
	idx := BuildPrefixIndex(words)

	got := idx.Suggest("cov", 5)
	require.Len(t, got, 3)
	require.Equal(t, "covid", got[0].Word)
	require.Equal(t, "cover", got[1].Word)
	require.Equal(t, "coven", got[2].Word)
}

func TestSuggestNeverReturnsNonMatchingPrefix(t *testing.T) {
	words := []WordDF{{Word: "covid", DF: 10}, {Word: "coffee", DF: 3}}
	idx := BuildPrefixIndex(words)

	got := idx.Suggest("cov", 5)
	for _, w := range got {
		require.True(t, len(w.Word) >= 3 && w.Word[:3] == "cov")
	}
}

func TestSuggestTruncatesToK(t *testing.T) {
	words := make([]WordDF, 0, 20)
	for i := 0; i < 20; i++ {
		words = append(words, WordDF{Word: "covid" + string(rune('a'+i)), DF: uint32(20 - i)})
	}
	idx := BuildPrefixIndex(words)
	got := idx.Suggest("cov", 5)
	require.Len(t, got, 5)
}

func TestGroupTruncationLimits(t *testing.T) {
	words := make([]WordDF, 0, 200)
	for i := 0; i < 200; i++ {
		words = append(words, WordDF{Word: "ab" + string(rune('a'+(i%26))) + string(rune('a'+(i/26))), DF: uint32(i)})
	}
	idx := BuildPrefixIndex(words)
	entries, ok := idx.groups["ab"]
	require.True(t, ok)
	require.LessOrEqual(t, len(entries), TwoCharLimit)
}

func TestPrefixIndexSaveLoadRoundTrip(t *testing.T) {
	words := []WordDF{{Word: "covid", DF: 10}, {Word: "cover", DF: 5}}
	idx := BuildPrefixIndex(words)

	path := filepath.Join(t.TempDir(), "autocomplete.json")
	require.NoError(t, idx.Save(path))

	loaded, err := LoadPrefixIndex(path)
	require.NoError(t, err)
	got := loaded.Suggest("cov", 5)
	require.Len(t, got, 2)
}

func TestLoadPrefixIndexMissingFileIsEmpty(t *testing.T) {
	idx, err := LoadPrefixIndex(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Empty(t, idx.Suggest("co", 5))
}

func TestLoadPrefixIndexCorruptIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autocomplete.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := LoadPrefixIndex(path)
	require.Error(t, err)
}
