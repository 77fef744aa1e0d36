package forwardindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndScanRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forward_index.txt")

	rec1 := Record{DocID: "DOC_1", TotalTerms: 5, TitleLemmas: []uint32{1, 2}, AbstractLemmas: []uint32{3}, BodyLemmas: []uint32{4, 5}}
	rec2 := Record{DocID: "DOC_2", TotalTerms: 0}

	require.NoError(t, Append(path, rec1))
	require.NoError(t, Append(path, rec2))

	got, err := Scan(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, rec1, got[0])
	require.Equal(t, "DOC_2", got[1].DocID)
	require.Empty(t, got[1].TitleLemmas)
}

func TestScanMissingFileIsEmptyNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does_not_exist.txt")
	got, err := Scan(path)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestScanCorruptLineIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forward_index.txt")
	require.NoError(t, Append(path, Record{DocID: "DOC_1", TotalTerms: 1, BodyLemmas: []uint32{1}}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not|enough|fields\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Scan(path)
	require.Error(t, err)
}

func TestBodyLemmasTruncatedAtLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forward_index.txt")
	body := make([]uint32, BodyLemmaLimit+100)
	for i := range body {
		body[i] = uint32(i)
	}
	require.NoError(t, Append(path, Record{DocID: "DOC_BIG", TotalTerms: len(body), BodyLemmas: body}))

	got, err := Scan(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].BodyLemmas, BodyLemmaLimit)
	require.Equal(t, uint32(0), got[0].BodyLemmas[0])
	require.Equal(t, uint32(BodyLemmaLimit-1), got[0].BodyLemmas[BodyLemmaLimit-1])
}

func TestAppendIsOrderPreserving(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forward_index.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, Append(path, Record{DocID: "DOC_" + itoa(i), TotalTerms: i}))
	}
	got, err := Scan(path)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, rec := range got {
		require.Equal(t, "DOC_"+itoa(i), rec.DocID)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
