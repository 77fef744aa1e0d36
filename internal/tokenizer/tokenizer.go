// Package tokenizer normalizes free text into lemmatized alphabetic tokens,
// the way original_source/backend/lexicon.py's clean_and_tokenize does:
// strip URLs and punctuation, lowercase, split on whitespace, drop
// stopwords and non-alphabetic/too-short tokens, lemmatize what remains.
package tokenizer

import (
	"regexp"
	"strings"
)

// Token is a surface/lemma pair in document order.
type Token struct {
	Surface string
	Lemma   string
}

// NumberSentinel is the reserved lemma surface purely-numeric tokens would
// collapse to if they were retained. The reference design drops them
// instead (see spec.md §4.1), so this identifier exists only so the lexicon
// package has a stable name to reserve at construction.
const NumberSentinel = "__number__"

var (
	urlPattern    = regexp.MustCompile(`https?://\S+`)
	nonAlnumRun   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	alphaOnly     = regexp.MustCompile(`^[a-zA-Z]+$`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// stopwords is the fixed English stopword set, ported from
// original_source/backend/py/document_indexer.py's STOPWORDS fallback
// constant (itself NLTK's stopword list plus a handful of corpus-specific
// filler words). Fixed at process start, as required by spec.md §4.1.
var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "as", "is", "was", "are", "were", "been",
		"be", "have", "has", "had", "do", "does", "did", "will", "would", "could",
		"should", "may", "might", "must", "shall", "can", "need", "dare", "ought",
		"used", "this", "that", "these", "those", "i", "you", "he", "she", "it",
		"we", "they", "what", "which", "who", "whom", "where", "when", "why", "how",
		"all", "each", "every", "both", "few", "more", "most", "other", "some",
		"such", "no", "nor", "not", "only", "own", "same", "so", "than", "too",
		"very", "just", "also", "now", "here", "there", "then", "once", "if",
		"because", "although", "while", "whereas", "however", "therefore", "thus",
		"hence", "moreover", "furthermore", "nevertheless", "nonetheless", "instead",
		"otherwise", "meanwhile", "accordingly", "consequently", "subsequently",
		"about", "above", "across", "after", "against", "along", "among", "around",
		"before", "behind", "below", "beneath", "beside", "between", "beyond",
		"during", "except", "inside", "into", "near", "off", "onto", "out",
		"outside", "over", "past", "since", "through", "throughout", "toward",
		"under", "underneath", "until", "unto", "upon", "within", "without",
		"et", "al", "etc", "ie", "eg", "vs", "fig", "table", "ref", "see",
		"using", "use", "study", "studies", "result", "results",
		"show", "shows", "shown", "found", "based", "including", "include",
		"well",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether surface is in the fixed stopword set.
func IsStopword(surface string) bool {
	_, ok := stopwords[surface]
	return ok
}

// Tokenize normalizes text into a sequence of (surface, lemma) pairs in
// document order. The function is pure: same input always yields the same
// output.
func Tokenize(text string) []Token {
	cleaned := urlPattern.ReplaceAllString(text, " ")
	cleaned = nonAlnumRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(cleaned)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	fields := strings.Split(cleaned, " ")
	tokens := make([]Token, 0, len(fields))
	for _, w := range fields {
		if len(w) < 2 {
			continue
		}
		if !alphaOnly.MatchString(w) {
			continue
		}
		if IsStopword(w) {
			continue
		}
		tokens = append(tokens, Token{Surface: w, Lemma: Lemmatize(w)})
	}
	return tokens
}
