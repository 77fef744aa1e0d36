// Package embeddings loads the word-vector table and builds the derived
// structures the query engine and the autocomplete surface use: a
// chromem-go nearest-neighbor collection over word vectors, a prefix
// autocomplete index, and a phrase (bigram/trigram) autocomplete index.
// Grounded on original_source/backend/py/embeddings_setup.py's GloVe
// binary conversion and original_source/backend/py/ngram_builder.py's
// sharded phrase counting.
package embeddings

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// Table is the in-memory word-vector table: a vocabulary map plus an array
// of L2-normalized vectors of fixed dimension (spec.md §3). Immutable after
// load (spec.md §5).
type Table struct {
	dim     int
	vocab   map[string]int
	vectors [][]float32
}

// LoadTable reads embeddings/vocab.json and embeddings/embeddings.bin.
// Missing files yield an empty table (semantic expansion and `similar`
// then degrade to returning no neighbors, never an error).
func LoadTable(vocabPath, binPath string) (*Table, error) {
	t := &Table{vocab: make(map[string]int)}

	vocabData, err := os.ReadFile(vocabPath)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("embeddings: read %s: %w", vocabPath, err)
	}
	if err := json.Unmarshal(vocabData, &t.vocab); err != nil {
		return nil, fmt.Errorf("embeddings: %w: vocab.json: %v", corpuserrors.ErrCorruptIndex, err)
	}

	binData, err := os.ReadFile(binPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Table{vocab: make(map[string]int)}, nil
		}
		return nil, fmt.Errorf("embeddings: read %s: %w", binPath, err)
	}
	vectors, dim, err := decodeVectors(binData)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w: embeddings.bin: %v", corpuserrors.ErrCorruptIndex, err)
	}
	t.vectors = vectors
	t.dim = dim
	return t, nil
}

func decodeVectors(data []byte) ([][]float32, int, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("truncated header")
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	dim := binary.LittleEndian.Uint32(data[4:8])
	want := 8 + int(count)*int(dim)*4
	if len(data) < want {
		return nil, 0, fmt.Errorf("truncated vector data: want %d bytes, got %d", want, len(data))
	}

	vectors := make([][]float32, count)
	offset := 8
	for i := uint32(0); i < count; i++ {
		vec := make([]float32, dim)
		for d := uint32(0); d < dim; d++ {
			bits := binary.LittleEndian.Uint32(data[offset : offset+4])
			vec[d] = math.Float32frombits(bits)
			offset += 4
		}
		vectors[i] = vec
	}
	return vectors, int(dim), nil
}

// Dim returns the embedding dimensionality, or 0 if no table was loaded.
func (t *Table) Dim() int { return t.dim }

// Size returns the number of words with a known vector.
func (t *Table) Size() int { return len(t.vocab) }

// Vector returns word's L2-normalized embedding, if known.
func (t *Table) Vector(word string) ([]float32, bool) {
	idx, ok := t.vocab[word]
	if !ok || idx < 0 || idx >= len(t.vectors) {
		return nil, false
	}
	return t.vectors[idx], true
}

// Words returns every word with a known vector, in no particular order.
func (t *Table) Words() []string {
	words := make([]string, 0, len(t.vocab))
	for w := range t.vocab {
		words = append(words, w)
	}
	return words
}

// CosineSimilarity computes the cosine similarity between two vectors of
// equal length. Vectors loaded from the table are already L2-normalized,
// so callers may use a plain dot product instead when both operands come
// from the table.
func CosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
