package engine

import (
	"encoding/json"
	"net/http"

	"github.com/kkarrenn/searchcore/internal/indexer"
	"github.com/kkarrenn/searchcore/internal/query"
)

// NewHTTPHandler serves the four operations of spec.md §6 over plain JSON.
// Four fixed routes don't warrant a router dependency (see DESIGN.md), so
// this stays net/http + encoding/json only, the way the rest of the ambient
// stack favors the smallest library that does the job.
func NewHTTPHandler(e *Engine) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", e.handleSearch)
	mux.HandleFunc("/autocomplete", e.handleAutocomplete)
	mux.HandleFunc("/similar", e.handleSimilar)
	mux.HandleFunc("/index_document", e.handleIndexDocument)
	return mux
}

type searchResponse struct {
	Results       []searchHit `json:"results"`
	ExpandedTerms []string    `json:"expanded_terms"`
	SearchTimeMS  int64       `json:"search_time_ms"`
}

type searchHit struct {
	Rank          int     `json:"rank"`
	DocID         string  `json:"doc_id"`
	Score         float64 `json:"score"`
	TFIDFScore    float64 `json:"tfidf_score"`
	PageRankScore float64 `json:"pagerank_score"`
	MatchedTerms  int     `json:"matched_terms"`
	TotalTerms    int     `json:"total_terms"`
}

func (e *Engine) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := query.OR
	if q.Get("mode") == "and" {
		mode = query.AND
	}
	resp := e.Search(r.Context(), query.Request{
		Query:    q.Get("q"),
		Mode:     mode,
		Semantic: q.Get("semantic") == "true",
	})

	out := searchResponse{ExpandedTerms: resp.ExpandedTerms, SearchTimeMS: resp.SearchTimeMS}
	for _, h := range resp.Hits {
		out.Results = append(out.Results, searchHit{
			Rank:          h.Rank,
			DocID:         h.DocID,
			Score:         h.Score,
			TFIDFScore:    h.TFIDFScore,
			PageRankScore: h.AuthorityScore,
			MatchedTerms:  h.MatchedTerms,
			TotalTerms:    h.TotalTerms,
		})
	}
	writeJSON(w, out)
}

type autocompleteResponse struct {
	Suggestions []autocompleteSuggestion `json:"suggestions"`
}

type autocompleteSuggestion struct {
	Word string `json:"word"`
	DF   uint32 `json:"df"`
}

func (e *Engine) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	matches := e.Autocomplete(prefix)
	out := autocompleteResponse{}
	for _, m := range matches {
		out.Suggestions = append(out.Suggestions, autocompleteSuggestion{Word: m.Word, DF: m.DF})
	}
	writeJSON(w, out)
}

type similarResponse struct {
	SimilarWords []similarWord `json:"similar_words"`
}

type similarWord struct {
	Word       string  `json:"word"`
	Similarity float32 `json:"similarity"`
}

func (e *Engine) handleSimilar(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	neighbors, err := e.Similar(r.Context(), word)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out := similarResponse{}
	for _, n := range neighbors {
		out.SimilarWords = append(out.SimilarWords, similarWord{Word: n.Word, Similarity: n.Similarity})
	}
	writeJSON(w, out)
}

type indexDocumentRequest struct {
	DocID    string   `json:"doc_id"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Body     string   `json:"body"`
	Authors  []string `json:"authors"`
}

type indexDocumentResponse struct {
	DocID          string `json:"doc_id"`
	TotalTerms     int    `json:"total_terms"`
	UniqueTerms    int    `json:"unique_terms"`
	NewTermsAdded  int    `json:"new_terms_added"`
	IndexingTimeMS int64  `json:"indexing_time_ms"`
}

func (e *Engine) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req indexDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := e.IndexDocument(indexer.Request{
		DocID:    req.DocID,
		Title:    req.Title,
		Abstract: req.Abstract,
		Body:     req.Body,
		Authors:  req.Authors,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, indexDocumentResponse{
		DocID:          res.DocID,
		TotalTerms:     res.TotalTerms,
		UniqueTerms:    res.UniqueTerms,
		NewTermsAdded:  res.NewTermsAdded,
		IndexingTimeMS: res.IndexingTimeMS,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
