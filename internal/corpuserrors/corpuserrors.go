// Package corpuserrors defines the error taxonomy shared by every searchcore
// component: kinds, not types. Callers distinguish them with errors.Is.
package corpuserrors

import "errors"

var (
	// ErrInputError marks a malformed query or missing required field.
	ErrInputError = errors.New("corpuserrors: input error")

	// ErrNoTerms marks a document with no terms left after tokenization.
	ErrNoTerms = errors.New("corpuserrors: no terms")

	// ErrCorruptIndex marks a binary layout violation. Fatal at load.
	ErrCorruptIndex = errors.New("corpuserrors: corrupt index")

	// ErrIOError marks a transient disk failure, surfaced but not retried.
	ErrIOError = errors.New("corpuserrors: io error")

	// ErrLexiconFull marks identifier-space exhaustion. Fatal.
	ErrLexiconFull = errors.New("corpuserrors: lexicon full")
)

// NotIndexed is not an error kind in the usual sense: a missing lemma or
// word is an expected, non-fatal outcome that callers test for explicitly
// rather than via errors.Is. It has no sentinel because it never appears as
// a returned error — see package docs in lexicon and barrel.
