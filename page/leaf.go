package page

import "encoding/binary"

// Leaf pages hold sorted (key, value) entries. The slot array, at
// LeafHeaderSize, grows upward as entries are inserted; entry bodies are
// appended from the high end of the buffer downward. Neither slots nor
// bodies are ever compacted in place — deletes just shrink the slot array,
// leaving dead bytes in the body region until the page is next split,
// which is the point spec.md's Non-goals accept sparse pages at.
//
// spec.md's reference byte layout for this header carries prev/next
// sibling page ids; this implementation omits them and keeps the descent
// path in the iterator instead (spec.md §9's "strongly preferred"
// resolution for sibling-pointer handling), so no page is ever mutated
// after it is written. See btree.Iterator.

// InitLeaf resets buf to an empty leaf page for the given index.
func InitLeaf(buf []byte, indexID uint8) {
	buf[0] = byte(TypeLeaf)
	buf[1] = indexID
	binary.BigEndian.PutUint16(buf[2:4], 0)
	clear(buf[4:LeafHeaderSize])
}

func LeafNumEntries(buf []byte) int {
	return int(binary.BigEndian.Uint16(buf[2:4]))
}

func setLeafNumEntries(buf []byte, n int) {
	binary.BigEndian.PutUint16(buf[2:4], uint16(n))
}

func leafSlotOff(i int) int { return LeafHeaderSize + i*slotSize }

func leafBodyOff(buf []byte, i int) int {
	return int(binary.BigEndian.Uint16(buf[leafSlotOff(i):]))
}

func setLeafBodyOff(buf []byte, i, off int) {
	binary.BigEndian.PutUint16(buf[leafSlotOff(i):], uint16(off))
}

// leafLowWater returns the lowest byte offset occupied by any entry body,
// i.e. the boundary between free space and the body region.
func leafLowWater(buf []byte, n int) int {
	low := len(buf)
	for i := 0; i < n; i++ {
		if off := leafBodyOff(buf, i); off < low {
			low = off
		}
	}
	return low
}

// LeafFreeSpace returns the number of bytes available for a new slot plus
// entry body without a split.
func LeafFreeSpace(buf []byte) int {
	n := LeafNumEntries(buf)
	used := LeafHeaderSize + n*slotSize
	return leafLowWater(buf, n) - used
}

func leafEntrySize(key, val []byte) int {
	return 2 + len(key) + 2 + len(val)
}

// LeafGetEntry returns the key and value stored at slot i.
func LeafGetEntry(buf []byte, i int) (key, val []byte) {
	off := leafBodyOff(buf, i)
	klen := int(binary.BigEndian.Uint16(buf[off:]))
	off += 2
	key = buf[off : off+klen]
	off += klen
	vlen := int(binary.BigEndian.Uint16(buf[off:]))
	off += 2
	val = buf[off : off+vlen]
	return key, val
}

// LeafKeyAt returns just the key at slot i, for comparisons.
func LeafKeyAt(buf []byte, i int) []byte {
	off := leafBodyOff(buf, i)
	klen := int(binary.BigEndian.Uint16(buf[off:]))
	return buf[off+2 : off+2+klen]
}

// LeafInsertEntry inserts (key, val) at slot index i, shifting slots at
// and after i to the right. It reports false without mutating buf if the
// entry would not fit.
func LeafInsertEntry(buf []byte, i int, key, val []byte) bool {
	n := LeafNumEntries(buf)
	size := leafEntrySize(key, val)
	needed := size + slotSize
	used := LeafHeaderSize + n*slotSize
	if leafLowWater(buf, n)-used < needed {
		return false
	}
	bodyOff := leafLowWater(buf, n) - size
	binary.BigEndian.PutUint16(buf[bodyOff:], uint16(len(key)))
	copy(buf[bodyOff+2:], key)
	valOff := bodyOff + 2 + len(key)
	binary.BigEndian.PutUint16(buf[valOff:], uint16(len(val)))
	copy(buf[valOff+2:], val)

	for j := n; j > i; j-- {
		setLeafBodyOff(buf, j, leafBodyOff(buf, j-1))
	}
	setLeafBodyOff(buf, i, bodyOff)
	setLeafNumEntries(buf, n+1)
	return true
}

// LeafDeleteEntry removes the entry at slot i. The body bytes are left as
// dead space; see the package doc comment.
func LeafDeleteEntry(buf []byte, i int) {
	n := LeafNumEntries(buf)
	for j := i; j < n-1; j++ {
		setLeafBodyOff(buf, j, leafBodyOff(buf, j+1))
	}
	setLeafNumEntries(buf, n-1)
}

// LeafSearchPoint returns the lower-bound slot index: the first slot whose
// key is >= key, or LeafNumEntries(buf) if key sorts after everything.
func LeafSearchPoint(buf []byte, key []byte, cmp func(a, b []byte) int) int {
	n := LeafNumEntries(buf)
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(LeafKeyAt(buf, mid), key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// LeafFindKey returns the slot index holding key and true, or
// (undefined, false) if key is absent.
func LeafFindKey(buf []byte, key []byte, cmp func(a, b []byte) int) (int, bool) {
	i := LeafSearchPoint(buf, key, cmp)
	if i < LeafNumEntries(buf) && cmp(LeafKeyAt(buf, i), key) == 0 {
		return i, true
	}
	return 0, false
}

// LeafSplit redistributes entries at and after splitAt from buf into the
// freshly initialized rightBuf, leaving buf holding entries [0, splitAt).
// Callers choose splitAt: n/2 for a balanced split, or n (all-old-entries
// stay left) to get the 90/10 append-order layout spec.md §4.2 describes,
// with the new entry then inserted into whichever side it belongs on.
// The returned separator is the first key written into rightBuf, or nil
// when rightBuf is left empty (splitAt == n).
func LeafSplit(buf, rightBuf []byte, splitAt int) []byte {
	n := LeafNumEntries(buf)
	indexID := IndexID(buf)

	type kv struct{ key, val []byte }
	moved := make([]kv, 0, n-splitAt)
	for i := splitAt; i < n; i++ {
		k, v := LeafGetEntry(buf, i)
		moved = append(moved, kv{append([]byte(nil), k...), append([]byte(nil), v...)})
	}
	kept := make([]kv, 0, splitAt)
	for i := 0; i < splitAt; i++ {
		k, v := LeafGetEntry(buf, i)
		kept = append(kept, kv{append([]byte(nil), k...), append([]byte(nil), v...)})
	}

	InitLeaf(buf, indexID)
	for i, e := range kept {
		LeafInsertEntry(buf, i, e.key, e.val)
	}

	InitLeaf(rightBuf, indexID)
	for i, e := range moved {
		LeafInsertEntry(rightBuf, i, e.key, e.val)
	}

	if len(moved) == 0 {
		return nil
	}
	return moved[0].key
}
