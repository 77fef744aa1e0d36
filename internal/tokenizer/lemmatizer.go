package tokenizer

import "strings"

// irregularLemmas covers the handful of high-frequency irregular forms a
// pure suffix-stripper gets wrong. Grounded on the effect (not the
// algorithm) of original_source/backend/lexicon.py's WordNetLemmatizer: no
// pack repo imports a WordNet-equivalent library, so this is a deliberate
// standard-library substitute (see DESIGN.md).
var irregularLemmas = map[string]string{
	"studies":  "study",
	"children": "child",
	"people":   "person",
	"men":      "man",
	"women":    "woman",
	"mice":     "mouse",
	"data":     "datum",
	"analyses": "analysis",
	"bacteria": "bacterium",
	"criteria": "criterion",
}

// Lemmatize reduces a lowercase alphabetic word to an approximate
// morphological root: look the word up in the irregular table first, then
// strip common English inflectional suffixes (plural -s/-es/-ies/-ves,
// verb -ing/-ed, adverb -ly), falling back to the word itself.
func Lemmatize(word string) string {
	if lemma, ok := irregularLemmas[word]; ok {
		return lemma
	}

	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ves") && len(word) > 4:
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(word, "sses") && len(word) > 5:
		return word[:len(word)-2]
	case strings.HasSuffix(word, "es") && len(word) > 4 && endsInSibilant(word[:len(word)-2]):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ing") && len(word) > 5:
		return restoreSilentE(word[:len(word)-3])
	case strings.HasSuffix(word, "ed") && len(word) > 4:
		return restoreSilentE(word[:len(word)-2])
	case strings.HasSuffix(word, "ly") && len(word) > 4:
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word) > 3:
		return word[:len(word)-1]
	}
	return word
}

func endsInSibilant(stem string) bool {
	if stem == "" {
		return false
	}
	switch stem[len(stem)-1] {
	case 's', 'x', 'z':
		return true
	}
	return strings.HasSuffix(stem, "ch") || strings.HasSuffix(stem, "sh")
}

// restoreSilentE undoes the doubled-consonant pattern left by stripping
// -ing/-ed from stems like "runn" (run). A dropped silent e is not
// restored: "mak" (from "making") stays "mak". This is a heuristic, not a
// dictionary lookup: it trades occasional over/under-stemming for zero
// dependency weight.
func restoreSilentE(stem string) string {
	if len(stem) >= 2 && stem[len(stem)-1] == stem[len(stem)-2] {
		consonant := stem[len(stem)-1]
		if !isVowel(consonant) {
			return stem[:len(stem)-1]
		}
	}
	return stem
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
