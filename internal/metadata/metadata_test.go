package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New()
	s.Set("DOC_1", Entry{Title: "A Study", Authors: []string{"A. Author"}, Abstract: "An abstract."})

	e, ok := s.Get("DOC_1")
	require.True(t, ok)
	require.Equal(t, "A Study", e.Title)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	s.Set("DOC_1", Entry{Title: "A Study", Authors: []string{"A. Author"}, Abstract: "An abstract."})
	path := filepath.Join(t.TempDir(), "document_metadata.json")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	e, ok := loaded.Get("DOC_1")
	require.True(t, ok)
	require.Equal(t, "A Study", e.Title)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Len())
}

func TestLoadCorruptIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "document_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
