package barrel

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kkarrenn/searchcore/internal/corpuserrors"
)

// indexEntry is one row of a .idx file: spec.md §4.3's
// {u32 lemma_id, i64 offset, i64 length}, sorted by lemma_id.
type indexEntry struct {
	LemmaID uint32
	Offset  int64
	Length  int64
}

// encodeBarrel serializes a set of posting lists into the .bin/.idx pair
// described in spec.md §4.3. Records are written in ascending lemma id
// order, so the .idx rows come out sorted by lemma id and stay
// binary-searchable.
func encodeBarrel(lists map[uint32]*PostingList) (binData, idxData []byte) {
	lemmaIDs := make([]uint32, 0, len(lists))
	for id := range lists {
		lemmaIDs = append(lemmaIDs, id)
	}
	sortUint32s(lemmaIDs)

	var bin []byte
	entries := make([]indexEntry, 0, len(lemmaIDs))
	for _, lemmaID := range lemmaIDs {
		pl := lists[lemmaID]
		offset := int64(len(bin))

		var rec [12]byte
		binary.LittleEndian.PutUint32(rec[0:4], lemmaID)
		binary.LittleEndian.PutUint32(rec[4:8], pl.DF)
		binary.LittleEndian.PutUint32(rec[8:12], uint32(len(pl.Postings)))
		bin = append(bin, rec[:]...)

		for _, p := range pl.Postings {
			var docBuf [DocIDMaxBytes]byte
			copy(docBuf[:], truncateDocID(p.DocID))
			bin = append(bin, docBuf[:]...)
			var tfBuf [4]byte
			binary.LittleEndian.PutUint32(tfBuf[:], p.TF)
			bin = append(bin, tfBuf[:]...)
		}

		entries = append(entries, indexEntry{LemmaID: lemmaID, Offset: offset, Length: int64(len(bin)) - offset})
	}

	idx := make([]byte, 4)
	binary.LittleEndian.PutUint32(idx, uint32(len(entries)))
	for _, e := range entries {
		var row [20]byte
		binary.LittleEndian.PutUint32(row[0:4], e.LemmaID)
		binary.LittleEndian.PutUint64(row[4:12], uint64(e.Offset))
		binary.LittleEndian.PutUint64(row[12:20], uint64(e.Length))
		idx = append(idx, row[:]...)
	}

	return bin, idx
}

func sortUint32s(s []uint32) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

func decodeIndex(data []byte) ([]indexEntry, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("barrel: %w: truncated index header", corpuserrors.ErrCorruptIndex)
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	offset := 4
	entries := make([]indexEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+20 > len(data) {
			return nil, fmt.Errorf("barrel: %w: truncated index row", corpuserrors.ErrCorruptIndex)
		}
		lemmaID := binary.LittleEndian.Uint32(data[offset : offset+4])
		off := int64(binary.LittleEndian.Uint64(data[offset+4 : offset+12]))
		length := int64(binary.LittleEndian.Uint64(data[offset+12 : offset+20]))
		entries = append(entries, indexEntry{LemmaID: lemmaID, Offset: off, Length: length})
		offset += 20
	}
	return entries, nil
}

func decodePostingList(rec []byte) (*PostingList, error) {
	if len(rec) < 12 {
		return nil, fmt.Errorf("barrel: %w: truncated record header", corpuserrors.ErrCorruptIndex)
	}
	df := binary.LittleEndian.Uint32(rec[4:8])
	numDocs := binary.LittleEndian.Uint32(rec[8:12])
	offset := 12

	postings := make([]Posting, 0, numDocs)
	for i := uint32(0); i < numDocs; i++ {
		if offset+DocIDMaxBytes+4 > len(rec) {
			return nil, fmt.Errorf("barrel: %w: truncated posting", corpuserrors.ErrCorruptIndex)
		}
		docIDBytes := rec[offset : offset+DocIDMaxBytes]
		offset += DocIDMaxBytes
		tf := binary.LittleEndian.Uint32(rec[offset : offset+4])
		offset += 4
		postings = append(postings, Posting{DocID: trimNulPadding(docIDBytes), TF: tf})
	}

	return &PostingList{DF: df, Postings: postings}, nil
}

func trimNulPadding(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}

func writeBarrelFiles(binPath, idxPath string, lists map[uint32]*PostingList) error {
	binData, idxData := encodeBarrel(lists)
	if err := atomicWrite(binPath, binData); err != nil {
		return err
	}
	return atomicWrite(idxPath, idxData)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("barrel: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("barrel: tempfile: %w", err)
	}
	tmpPath := tmp.Name()
	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("barrel: write: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("barrel: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("barrel: close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("barrel: rename: %w", err)
	}
	return nil
}
