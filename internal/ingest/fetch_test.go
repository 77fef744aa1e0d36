package ingest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchSourceWebpageWritesMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><article><h1>Outbreak Report</h1><p>covid vaccine trial</p></article></body></html>`))
	}))
	defer srv.Close()

	target := t.TempDir()
	src := Source{
		Name:    "test-site",
		Type:    "webpage",
		Extract: "article",
		Dir:     "out",
		URLs:    []string{srv.URL},
	}

	require.NoError(t, FetchSource(src, target))

	entries, err := os.ReadDir(filepath.Join(target, "out"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(target, "out", entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(content), "Outbreak Report")
	require.Contains(t, string(content), "covid vaccine trial")
}

func TestFetchSourceUnsupportedTypeIsError(t *testing.T) {
	err := FetchSource(Source{Type: "unknown"}, t.TempDir())
	require.Error(t, err)
}

func TestFetchSourceWebpageRequiresExtractSelector(t *testing.T) {
	err := FetchSource(Source{Type: "webpage", URLs: []string{"https://example.com"}}, t.TempDir())
	require.Error(t, err)
}
