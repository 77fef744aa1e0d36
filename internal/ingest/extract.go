// Package ingest is the bulk corpus ingestion collaborator: given a
// directory of source documents (CORD-19-shaped JSON, plain text,
// markdown) or a list of remote sources to fetch first, it extracts
// {title, abstract, body} from each file and feeds it to
// indexer.IndexDocument one file at a time. Grounded on
// original_source/backend/py/document_indexer.py's extract_text_from_file
// (field extraction rules) and
// _examples/kkarrenn-devops-gemini-cli-extension/local-kb-index-builder's
// fetch_docs.go/download.go (the webpage/git-repo fetch pipeline), per
// SPEC_FULL.md's "[FULL] bulk corpus ingestion + doc-source fetch".
package ingest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Document is the {title, abstract, body} triple extracted from one
// source file, ready to hand to indexer.IndexDocument.
type Document struct {
	Title    string
	Abstract string
	Body     string
}

// ExtractFromFile dispatches on fileType (the file's lowercase extension,
// without the dot) the way document_indexer.py's extract_text_from_file
// does. An unrecognized type falls through to generic text extraction.
func ExtractFromFile(content []byte, fileType string) (Document, error) {
	switch strings.ToLower(fileType) {
	case "json":
		return extractJSON(content)
	case "txt":
		return extractTxt(content), nil
	case "md":
		return extractMarkdown(content), nil
	default:
		return Document{Body: string(content)}, nil
	}
}

// cordMetadata mirrors the CORD-19 JSON shape's metadata.title field.
type cordMetadata struct {
	Title string `json:"title"`
}

// cordTextEntry mirrors one {"text": "..."} entry of an abstract or
// body_text array.
type cordTextEntry struct {
	Text string `json:"text"`
}

// cordDocument is the superset of JSON shapes document_indexer.py accepts:
// full CORD-19 records, flat {title, abstract, body_text}, or a generic
// {content} / {text} blob.
type cordDocument struct {
	Metadata *cordMetadata   `json:"metadata"`
	Title    string          `json:"title"`
	Abstract json.RawMessage `json:"abstract"`
	BodyText json.RawMessage `json:"body_text"`
	Content  string          `json:"content"`
	Text     string          `json:"text"`
}

func extractJSON(content []byte) (Document, error) {
	var doc cordDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return Document{}, fmt.Errorf("ingest: parse json: %w", err)
	}

	result := Document{}
	if doc.Metadata != nil && doc.Metadata.Title != "" {
		result.Title = doc.Metadata.Title
	} else if doc.Title != "" {
		result.Title = doc.Title
	}

	result.Abstract = joinTextField(doc.Abstract)
	result.Body = joinTextField(doc.BodyText)
	if result.Body == "" && doc.Content != "" {
		result.Body = doc.Content
	}
	if result.Body == "" && doc.Text != "" {
		result.Body = doc.Text
	}
	return result, nil
}

// joinTextField handles both the CORD-19 list-of-{"text":...} shape and a
// plain string field, mirroring extract_text_from_file's isinstance check.
func joinTextField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var entries []cordTextEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = e.Text
		}
		return strings.Join(parts, " ")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// titleMaxRunes bounds a txt file's first line used as title (spec.md's
// original: `lines[0][:200]`).
const titleMaxRunes = 200

func extractTxt(content []byte) Document {
	text := strings.TrimSpace(string(content))
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return Document{}
	}
	title := truncateRunes(lines[0], titleMaxRunes)
	body := lines[0]
	if len(lines) > 1 {
		body = strings.Join(lines[1:], "\n")
	}
	return Document{Title: title, Body: body}
}

func extractMarkdown(content []byte) Document {
	text := strings.TrimSpace(string(content))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			title := strings.TrimSpace(strings.TrimLeft(line, "#"))
			body := strings.Join(lines[i+1:], "\n")
			return Document{Title: title, Body: body}
		}
	}
	return Document{Body: text}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// fileTypeOf derives the dispatch key ExtractFromFile expects from a
// file's extension, the way document_indexer.py derives file_type from
// Path(file_path).suffix.
func fileTypeOf(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// docIDFromIndex produces a stable fallback id for a batch-ingested file
// that doesn't carry its own doc_id, distinct from indexer.Request's
// random-UUID assignment used for single-document API calls.
func docIDFromIndex(path string, i int) string {
	return "DOC_INGEST_" + strconv.Itoa(i) + "_" + filepath.Base(path)
}
