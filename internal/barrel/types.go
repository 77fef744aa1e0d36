// Package barrel implements the sharded (barrelled) inverted index:
// immutable cold barrels plus one mutable hot barrel, with a binary
// on-disk layout designed for random-access posting-list lookup. Grounded
// on original_source/backend/py/document_indexer.py's barrel handling
// (_update_barrel / _rebuild_binary_barrel), reshaped into the typed
// binary format spec.md §4.3 requires instead of ad hoc JSON blobs.
package barrel

import "sort"

// Posting records that a lemma occurs tf times in doc_id.
type Posting struct {
	DocID string
	TF    uint32
}

// PostingList is the full set of postings for one lemma. DF always equals
// len(Postings); doc ids are unique within the list (spec.md §3).
type PostingList struct {
	DF       uint32
	Postings []Posting
}

// DocIDMaxBytes is the fixed width a doc_id is stored in within a binary
// barrel record (spec.md §4.3). Longer doc ids are truncated; callers must
// guarantee uniqueness within the first DocIDMaxBytes bytes.
const DocIDMaxBytes = 20

// HotBarrelID is the fixed identifier of the mutable hot partition
// (spec.md §4.3: "Hot barrel has a fixed identifier (e.g. 10)").
const HotBarrelID = 10

func truncateDocID(docID string) string {
	if len(docID) <= DocIDMaxBytes {
		return docID
	}
	return docID[:DocIDMaxBytes]
}

// mergeUnionHotWins unions two posting lists by doc id; when a doc id
// appears in both, the hot value wins (spec.md §4.3: "hot postings are
// always more recent"). The result is sorted by doc id for determinism.
func mergeUnionHotWins(cold, hot *PostingList) *PostingList {
	if cold == nil && hot == nil {
		return nil
	}
	byDoc := make(map[string]uint32)
	if cold != nil {
		for _, p := range cold.Postings {
			byDoc[p.DocID] = p.TF
		}
	}
	if hot != nil {
		for _, p := range hot.Postings {
			byDoc[p.DocID] = p.TF
		}
	}
	merged := &PostingList{Postings: make([]Posting, 0, len(byDoc))}
	for doc, tf := range byDoc {
		merged.Postings = append(merged.Postings, Posting{DocID: doc, TF: tf})
	}
	sort.Slice(merged.Postings, func(i, j int) bool {
		return merged.Postings[i].DocID < merged.Postings[j].DocID
	})
	merged.DF = uint32(len(merged.Postings))
	return merged
}
