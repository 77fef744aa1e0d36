// Package indexer implements the incremental document-add transaction:
// tokenize, intern, append hot postings, append to the forward index,
// update metadata, persist the lexicon when new words were added, and
// flush the hot barrel together with the barrel lookup. Grounded on
// original_source/backend/py/document_indexer.py's index_document,
// reshaped per spec.md §4.7 into explicit Go types instead of a dict
// response.
package indexer

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kkarrenn/searchcore/internal/barrel"
	"github.com/kkarrenn/searchcore/internal/config"
	"github.com/kkarrenn/searchcore/internal/corpuserrors"
	"github.com/kkarrenn/searchcore/internal/forwardindex"
	"github.com/kkarrenn/searchcore/internal/lexicon"
	"github.com/kkarrenn/searchcore/internal/metadata"
	"github.com/kkarrenn/searchcore/internal/tokenizer"
)

// TitleMaxRunes and AbstractMaxRunes bound what's persisted into document
// metadata (spec.md §4.7 step 7).
const (
	TitleMaxRunes    = 500
	AbstractMaxRunes = 1000
)

// Request is the input to IndexDocument (spec.md §4.7).
type Request struct {
	DocID    string
	Title    string
	Abstract string
	Body     string
	Authors  []string
}

// Result is what a successful IndexDocument call reports (spec.md §4.7
// step 10).
type Result struct {
	DocID          string
	TotalTerms     int
	UniqueTerms    int
	NewTermsAdded  int
	BarrelsUpdated []int
	IndexingTimeMS int64
}

// Indexer serializes every index_document call behind a single
// process-wide lock (spec.md §5: "the indexer is single-writer"), and
// owns the lexicon and barrel store it mutates.
type Indexer struct {
	mu sync.Mutex

	cfg      *config.Config
	lex      *lexicon.Lexicon
	barrels  *barrel.Store
	metadata *metadata.Store
}

// New wires an already-opened lexicon, barrel store, and metadata store
// into an Indexer. The engine is responsible for opening these; readers
// share the same stores, and the engine's lock keeps them out while a
// call is in progress.
func New(cfg *config.Config, lex *lexicon.Lexicon, barrels *barrel.Store, meta *metadata.Store) *Indexer {
	return &Indexer{cfg: cfg, lex: lex, barrels: barrels, metadata: meta}
}

// IndexDocument runs the full ten-step add transaction described in
// spec.md §4.7. A successful return means the document is durable and
// visible to subsequent queries.
func (idx *Indexer) IndexDocument(req Request) (*Result, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	start := time.Now()

	docID := req.DocID
	if docID == "" {
		var err error
		docID, err = newDocID()
		if err != nil {
			return nil, fmt.Errorf("indexer: %w: generate doc id: %v", corpuserrors.ErrIOError, err)
		}
	}

	titleTokens := tokenizer.Tokenize(req.Title)
	abstractTokens := tokenizer.Tokenize(req.Abstract)
	bodyTokens := tokenizer.Tokenize(req.Body)

	newTermsBefore := 0
	internAll := func(tokens []tokenizer.Token) ([]uint32, error) {
		ids := make([]uint32, 0, len(tokens))
		for _, tok := range tokens {
			_, lemmaID, isNew, err := idx.lex.InternWord(tok.Surface, tok.Lemma)
			if err != nil {
				return nil, err
			}
			if isNew {
				newTermsBefore++
			}
			ids = append(ids, lemmaID)
		}
		return ids, nil
	}

	titleLemmas, err := internAll(titleTokens)
	if err != nil {
		return nil, fmt.Errorf("indexer: %w", err)
	}
	abstractLemmas, err := internAll(abstractTokens)
	if err != nil {
		return nil, fmt.Errorf("indexer: %w", err)
	}
	bodyLemmas, err := internAll(bodyTokens)
	if err != nil {
		return nil, fmt.Errorf("indexer: %w", err)
	}

	allLemmas := make([]uint32, 0, len(titleLemmas)+len(abstractLemmas)+len(bodyLemmas))
	allLemmas = append(allLemmas, titleLemmas...)
	allLemmas = append(allLemmas, abstractLemmas...)
	allLemmas = append(allLemmas, bodyLemmas...)

	if len(allLemmas) == 0 {
		return nil, fmt.Errorf("indexer: %w", corpuserrors.ErrNoTerms)
	}

	termFreqs := make(map[uint32]uint32, len(allLemmas))
	for _, id := range allLemmas {
		termFreqs[id]++
	}

	barrelsUpdated := map[int]struct{}{barrel.HotBarrelID: {}}
	for lemmaID, tf := range termFreqs {
		idx.barrels.AppendHot(lemmaID, docID, tf)
	}

	if err := forwardindex.Append(idx.cfg.ForwardIndex(), forwardindex.Record{
		DocID:          docID,
		TotalTerms:     len(allLemmas),
		TitleLemmas:    titleLemmas,
		AbstractLemmas: abstractLemmas,
		BodyLemmas:     bodyLemmas,
	}); err != nil {
		return nil, err
	}

	title := truncateRunes(req.Title, TitleMaxRunes)
	if title == "" {
		title = fmt.Sprintf("Document %s", docID)
	}
	idx.metadata.Set(docID, metadata.Entry{
		Title:    title,
		Authors:  req.Authors,
		Abstract: truncateRunes(req.Abstract, AbstractMaxRunes),
	})
	if err := idx.metadata.Save(idx.cfg.Metadata()); err != nil {
		return nil, fmt.Errorf("indexer: %w: save metadata: %v", corpuserrors.ErrIOError, err)
	}

	if newTermsBefore > 0 {
		if err := idx.lex.Save(idx.cfg.Lexicon()); err != nil {
			return nil, fmt.Errorf("indexer: %w: save lexicon: %v", corpuserrors.ErrIOError, err)
		}
		if err := idx.lex.RebuildBinaryCache(idx.cfg.LexiconBinary()); err != nil {
			return nil, fmt.Errorf("indexer: %w: rebuild lexicon cache: %v", corpuserrors.ErrIOError, err)
		}
	}

	if err := idx.barrels.FlushHot(); err != nil {
		return nil, fmt.Errorf("indexer: %w: flush hot barrel: %v", corpuserrors.ErrIOError, err)
	}

	barrels := make([]int, 0, len(barrelsUpdated))
	for id := range barrelsUpdated {
		barrels = append(barrels, id)
	}

	return &Result{
		DocID:          docID,
		TotalTerms:     len(allLemmas),
		UniqueTerms:    len(termFreqs),
		NewTermsAdded:  newTermsBefore,
		BarrelsUpdated: barrels,
		IndexingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

// newDocID mirrors original_source/backend/py/document_indexer.py's
// `f"DOC_{uuid.uuid4().hex[:12].upper()}"`: a random UUIDv4, hex-encoded,
// truncated to the first 12 characters, uppercased, and prefixed.
func newDocID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	full := hex.EncodeToString(id[:])
	return "DOC_" + strings.ToUpper(full[:12]), nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
