// Package forwardindex maintains the append-only forward index: one line
// per document recording its total term count and the lemma ids found in
// its title, abstract, and body. Grounded on
// original_source/backend/py/document_indexer.py's _update_forward_index,
// translated from its pipe-delimited text line into the same shape spec.md
// §4.4 requires.
package forwardindex

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// BodyLemmaLimit caps how many body lemma ids are persisted per document
// (spec.md §4.4: "body truncated to 5000 lemmas"). Title and abstract are
// never truncated.
const BodyLemmaLimit = 5000

// Record is one document's forward-index entry.
type Record struct {
	DocID          string
	TotalTerms     int
	TitleLemmas    []uint32
	AbstractLemmas []uint32
	BodyLemmas     []uint32
}

// Append writes one line to the forward index file via atomic
// open-append-flush (spec.md §5: durability through append + fsync-on-close
// semantics; the file itself is never rewritten in place, only grown).
func Append(path string, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("forwardindex: mkdir: %w", err)
	}

	body := rec.BodyLemmas
	if len(body) > BodyLemmaLimit {
		body = body[:BodyLemmaLimit]
	}

	line := fmt.Sprintf("%s|%d|%s|%s|%s\n",
		rec.DocID,
		rec.TotalTerms,
		joinUint32(rec.TitleLemmas),
		joinUint32(rec.AbstractLemmas),
		joinUint32(body),
	)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("forwardindex: %w: open %s: %v", corpuserrors.ErrIOError, path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("forwardindex: %w: append: %v", corpuserrors.ErrIOError, err)
	}
	return f.Sync()
}

func joinUint32(ids []uint32) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// Scan reads every record in the forward index file in append order. A
// malformed line is fatal (spec.md §7: "Corrupt forward index line =>
// fatal"); a missing file yields zero records, not an error.
func Scan(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("forwardindex: %w: open %s: %v", corpuserrors.ErrIOError, path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("forwardindex: %w: line %d: %v", corpuserrors.ErrCorruptIndex, lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("forwardindex: %w: scan: %v", corpuserrors.ErrIOError, err)
	}
	return records, nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 5 {
		return Record{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	totalTerms, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("bad total_terms %q: %w", fields[1], err)
	}

	title, err := parseUint32List(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("bad title lemmas: %w", err)
	}
	abstract, err := parseUint32List(fields[3])
	if err != nil {
		return Record{}, fmt.Errorf("bad abstract lemmas: %w", err)
	}
	body, err := parseUint32List(fields[4])
	if err != nil {
		return Record{}, fmt.Errorf("bad body lemmas: %w", err)
	}

	return Record{
		DocID:          fields[0],
		TotalTerms:     totalTerms,
		TitleLemmas:    title,
		AbstractLemmas: abstract,
		BodyLemmas:     body,
	}, nil
}

func parseUint32List(s string) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint32(v))
	}
	return ids, nil
}
