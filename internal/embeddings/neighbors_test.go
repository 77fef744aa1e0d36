package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestTable() *Table {
	t := &Table{vocab: make(map[string]int), dim: 2}
	words := []string{"vaccine", "vaccination", "virus", "umbrella"}
	vectors := [][]float32{
		normalize([]float32{1, 0}),
		normalize([]float32{0.95, 0.05}),
		normalize([]float32{0.7, 0.3}),
		normalize([]float32{0, 1}),
	}
	for i, w := range words {
		t.vocab[w] = i
	}
	t.vectors = vectors
	return t
}

func TestNeighborIndexExcludesSelfAndSortsDescending(t *testing.T) {
	table := buildTestTable()
	idx, err := NewNeighborIndex(context.Background(), table)
	require.NoError(t, err)

	neighbors, err := idx.Neighbors(context.Background(), "vaccine", 10, -1)
	require.NoError(t, err)
	require.NotEmpty(t, neighbors)
	for _, n := range neighbors {
		require.NotEqual(t, "vaccine", n.Word)
		require.GreaterOrEqual(t, n.Similarity, float32(-1))
		require.LessOrEqual(t, n.Similarity, float32(1))
	}
	for i := 1; i < len(neighbors); i++ {
		require.GreaterOrEqual(t, neighbors[i-1].Similarity, neighbors[i].Similarity)
	}
}

func TestNeighborIndexRespectsThreshold(t *testing.T) {
	table := buildTestTable()
	idx, err := NewNeighborIndex(context.Background(), table)
	require.NoError(t, err)

	neighbors, err := idx.Neighbors(context.Background(), "vaccine", 10, 0.9)
	require.NoError(t, err)
	for _, n := range neighbors {
		require.GreaterOrEqual(t, n.Similarity, float32(0.9))
	}
}

func TestNeighborIndexUnknownWordReturnsEmpty(t *testing.T) {
	table := buildTestTable()
	idx, err := NewNeighborIndex(context.Background(), table)
	require.NoError(t, err)

	neighbors, err := idx.Neighbors(context.Background(), "unknownword", 10, -1)
	require.NoError(t, err)
	require.Empty(t, neighbors)
}

func TestNeighborIndexLimitsToK(t *testing.T) {
	table := buildTestTable()
	idx, err := NewNeighborIndex(context.Background(), table)
	require.NoError(t, err)

	neighbors, err := idx.Neighbors(context.Background(), "vaccine", 1, -1)
	require.NoError(t, err)
	require.LessOrEqual(t, len(neighbors), 1)
}
