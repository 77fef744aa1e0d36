package authority

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kkarrenn/searchcore/internal/forwardindex"
)

func TestComputeZeroTermDocumentGetsDefaultScore(t *testing.T) {
	records := []forwardindex.Record{
		{DocID: "DOC_EMPTY", TotalTerms: 0},
		{DocID: "DOC_NORMAL", TotalTerms: 10, TitleLemmas: []uint32{1}, AbstractLemmas: []uint32{2}, BodyLemmas: []uint32{3, 4, 5}},
	}
	scores := Compute(records)
	require.Equal(t, float32(ZeroTermScore), scores["DOC_EMPTY"])
}

func TestComputeScoresAreBounded(t *testing.T) {
	records := []forwardindex.Record{
		{DocID: "DOC_1", TotalTerms: 5, TitleLemmas: []uint32{1}, AbstractLemmas: []uint32{2}, BodyLemmas: []uint32{3, 4, 5}},
		{DocID: "DOC_2", TotalTerms: 500, TitleLemmas: []uint32{1}, BodyLemmas: makeRange(1, 500)},
		{DocID: "DOC_3", TotalTerms: 0},
	}
	scores := Compute(records)
	for doc, score := range scores {
		require.GreaterOrEqualf(t, score, float32(0), "doc %s", doc)
		require.LessOrEqualf(t, score, float32(1), "doc %s", doc)
	}
}

func TestComputeRewardsCompletenessAndDiversity(t *testing.T) {
	// Same total_terms, but one has title+abstract and diverse terms, the
	// other is missing both and has many repeats (low unique/total ratio).
	complete := forwardindex.Record{
		DocID:          "DOC_COMPLETE",
		TotalTerms:     10,
		TitleLemmas:    []uint32{1},
		AbstractLemmas: []uint32{2},
		BodyLemmas:     []uint32{3, 4, 5, 6, 7, 8, 9, 10},
	}
	sparse := forwardindex.Record{
		DocID:      "DOC_SPARSE",
		TotalTerms: 10,
		BodyLemmas: []uint32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
	scores := Compute([]forwardindex.Record{complete, sparse})
	require.Greater(t, scores["DOC_COMPLETE"], scores["DOC_SPARSE"])
}

func TestComputeRoundsToFourDecimals(t *testing.T) {
	records := []forwardindex.Record{
		{DocID: "DOC_1", TotalTerms: 7, TitleLemmas: []uint32{1}, BodyLemmas: []uint32{2, 3, 4, 5, 6, 7}},
	}
	scores := Compute(records)
	score := scores["DOC_1"]
	// Scores are float32, so compare at float32 precision: re-rounding the
	// stored value must give back the same float32.
	rounded := round4(float64(score))
	require.Equal(t, float32(rounded), score)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	scores := Scores{"DOC_1": 0.75, "DOC_2": 0.1}
	path := filepath.Join(t.TempDir(), "doc_scores.json")
	require.NoError(t, scores.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, scores, loaded)
}

func TestLoadMissingFileIsEmptyNotError(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestScoreUnknownDocReturnsDefault(t *testing.T) {
	scores := Scores{}
	require.Equal(t, float32(ZeroTermScore), scores.Score("nope"))
}

func makeRange(start, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(start + i)
	}
	return out
}
