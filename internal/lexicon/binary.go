package lexicon

import "encoding/binary"

// leBuffer is a tiny little-endian byte-buffer builder used to emit the
// binary lexicon cache layout from spec.md §4.2.
type leBuffer struct {
	buf []byte
}

func newLEBuffer() *leBuffer { return &leBuffer{} }

func (b *leBuffer) putU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *leBuffer) putI32(v int32) {
	b.putU32(uint32(v))
}

func (b *leBuffer) putU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *leBuffer) putLenPrefixedString(s string) {
	b.putU16(uint16(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *leBuffer) bytes() []byte { return b.buf }
