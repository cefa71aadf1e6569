package page

import "encoding/binary"

// Overflow pages hold data too large to inline in a leaf entry, as a
// forward chain of pages each carrying a length-prefixed slice of the
// payload and a pointer to the next page (0 if this is the chain's tail).

func InitOverflow(buf []byte, data []byte, next uint64) {
	buf[0] = byte(TypeOverflow)
	buf[1] = 0
	clear(buf[2:4])
	binary.BigEndian.PutUint64(buf[4:12], next)
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(data)))
	clear(buf[16:OverflowHeaderSize])
	copy(buf[OverflowHeaderSize:], data)
}

func OverflowNext(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf[4:12])
}

func OverflowDataLen(buf []byte) int {
	return int(binary.BigEndian.Uint32(buf[12:16]))
}

// OverflowPayload returns the data bytes stored on this page.
func OverflowPayload(buf []byte) []byte {
	n := OverflowDataLen(buf)
	return buf[OverflowHeaderSize : OverflowHeaderSize+n]
}

// OverflowCapacity is the number of payload bytes one overflow page of
// the given size can hold.
func OverflowCapacity(pageSize int) int {
	return pageSize - OverflowHeaderSize
}
