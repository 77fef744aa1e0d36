package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternWordIsIdempotent(t *testing.T) {
	l := New()
	wid1, lid1, isNew1, err := l.InternWord("vaccine", "vaccine")
	require.NoError(t, err)
	require.True(t, isNew1)

	wid2, lid2, isNew2, err := l.InternWord("vaccine", "vaccine")
	require.NoError(t, err)
	require.False(t, isNew2)
	require.Equal(t, wid1, wid2)
	require.Equal(t, lid1, lid2)
}

func TestInternWordNumericSentinel(t *testing.T) {
	l := New()
	_, lemmaID, _, err := l.InternWord("2021", "2021")
	require.NoError(t, err)
	require.Equal(t, NumberLemmaID, lemmaID)
}

func TestWordToLemmaTotalCoverage(t *testing.T) {
	l := New()
	words := []struct{ surface, lemma string }{
		{"vaccines", "vaccine"},
		{"trials", "trial"},
		{"covid", "covid"},
	}
	for _, w := range words {
		_, _, _, err := l.InternWord(w.surface, w.lemma)
		require.NoError(t, err)
	}
	for _, w := range words {
		wid, ok := l.WordID(w.surface)
		require.True(t, ok)
		lemmaID, ok := l.LemmaIDOfWord(wid)
		require.True(t, ok, "word_to_lemma must cover every word_id")
		_, lok := l.LemmaID(w.lemma)
		require.True(t, lok)
		_ = lemmaID
	}
}

func TestIdentifiersMonotonicAndImmutable(t *testing.T) {
	l := New()
	wid1, _, _, _ := l.InternWord("alpha", "alpha")
	wid2, _, _, _ := l.InternWord("beta", "beta")
	require.Less(t, wid1, wid2)

	// Re-interning "alpha" must not change its id.
	wid1Again, _, _, _ := l.InternWord("alpha", "alpha")
	require.Equal(t, wid1, wid1Again)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := New()
	_, _, _, err := l.InternWord("vaccine", "vaccine")
	require.NoError(t, err)
	_, _, _, err = l.InternWord("vaccines", "vaccine")
	require.NoError(t, err)

	path := filepath.Join(dir, "lexicon.json")
	require.NoError(t, l.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, l.Size(), loaded.Size())

	wid, ok := loaded.WordID("vaccine")
	require.True(t, ok)
	_, ok = loaded.LemmaIDOfWord(wid)
	require.True(t, ok)
}

func TestLoadCorruptRefusesToStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestBinaryCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := New()
	for _, w := range []string{"vaccine", "trial", "covid", "pandemic"} {
		_, _, _, err := l.InternWord(w, w)
		require.NoError(t, err)
	}

	path := filepath.Join(dir, "embeddings", "lexicon.bin")
	require.NoError(t, l.RebuildBinaryCache(path))

	original, err := os.ReadFile(path)
	require.NoError(t, err)

	cache, err := LoadBinaryCache(path)
	require.NoError(t, err)
	require.Equal(t, len(original), len(cache.Rewrite()))
	require.Equal(t, original, cache.Rewrite())

	lemmaID, ok := cache.LemmaID("covid")
	require.True(t, ok)
	wantLemmaID, _ := l.LemmaID("covid")
	require.Equal(t, wantLemmaID, lemmaID)

	_, ok = cache.LemmaID("nonexistent")
	require.False(t, ok)
}

func TestBinaryCacheCorruptTruncated(t *testing.T) {
	dir := t.TempDir()
	l := New()
	_, _, _, _ = l.InternWord("vaccine", "vaccine")
	path := filepath.Join(dir, "lexicon.bin")
	require.NoError(t, l.RebuildBinaryCache(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0o644))

	_, err = LoadBinaryCache(path)
	require.Error(t, err)
}
