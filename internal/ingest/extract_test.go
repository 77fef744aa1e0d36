package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFromFileJSONCordShape(t *testing.T) {
	content := []byte(`{
		"metadata": {"title": "Effects of a Novel Virus"},
		"abstract": [{"text": "First sentence."}, {"text": "Second sentence."}],
		"body_text": [{"text": "Body part one."}, {"text": "Body part two."}]
	}`)
	doc, err := ExtractFromFile(content, "json")
	require.NoError(t, err)
	require.Equal(t, "Effects of a Novel Virus", doc.Title)
	require.Equal(t, "First sentence. Second sentence.", doc.Abstract)
	require.Equal(t, "Body part one. Body part two.", doc.Body)
}

func TestExtractFromFileJSONFlatTitleFallback(t *testing.T) {
	content := []byte(`{"title": "Flat Title", "content": "plain content string"}`)
	doc, err := ExtractFromFile(content, "json")
	require.NoError(t, err)
	require.Equal(t, "Flat Title", doc.Title)
	require.Equal(t, "plain content string", doc.Body)
}

func TestExtractFromFileJSONTextFallback(t *testing.T) {
	content := []byte(`{"text": "generic text blob"}`)
	doc, err := ExtractFromFile(content, "json")
	require.NoError(t, err)
	require.Equal(t, "generic text blob", doc.Body)
}

func TestExtractFromFileJSONInvalidIsError(t *testing.T) {
	_, err := ExtractFromFile([]byte("{not json"), "json")
	require.Error(t, err)
}

func TestExtractFromFileTxtFirstLineIsTitle(t *testing.T) {
	content := []byte("Outbreak Report\nCases rose sharply this week.\nHospitals report strain.")
	doc := extractTxt(content)
	require.Equal(t, "Outbreak Report", doc.Title)
	require.Equal(t, "Cases rose sharply this week.\nHospitals report strain.", doc.Body)
}

func TestExtractFromFileTxtSingleLineUsesSameLineAsBody(t *testing.T) {
	content := []byte("A single line of text.")
	doc := extractTxt(content)
	require.Equal(t, "A single line of text.", doc.Title)
	require.Equal(t, "A single line of text.", doc.Body)
}

func TestExtractFromFileTxtTitleTruncatedTo200Runes(t *testing.T) {
	longLine := strings.Repeat("a", 250)
	doc := extractTxt([]byte(longLine))
	require.Len(t, []rune(doc.Title), titleMaxRunes)
}

func TestExtractFromFileMarkdownHeadingIsTitle(t *testing.T) {
	content := []byte("intro line before heading\n# Vaccine Trial Results\nThe trial met its endpoint.")
	doc := extractMarkdown(content)
	require.Equal(t, "Vaccine Trial Results", doc.Title)
	require.Equal(t, "The trial met its endpoint.", doc.Body)
}

func TestExtractFromFileMarkdownNoHeadingUsesWholeText(t *testing.T) {
	content := []byte("no heading here\njust body text")
	doc := extractMarkdown(content)
	require.Empty(t, doc.Title)
	require.Equal(t, "no heading here\njust body text", doc.Body)
}

func TestExtractFromFileUnknownTypeIsGenericBody(t *testing.T) {
	doc, err := ExtractFromFile([]byte("raw contents"), "pdf")
	require.NoError(t, err)
	require.Empty(t, doc.Title)
	require.Equal(t, "raw contents", doc.Body)
}
