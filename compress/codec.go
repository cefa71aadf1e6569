// Package compress implements a pluggable compression codec for
// overflow-page payloads (spec.md §4.2's overflow pages; see
// SPEC_FULL.md §6). Nothing else in the module calls it: values are
// stored inline in index keys and never spill into overflow pages. The
// shape —
// a Type tag byte selecting an algorithm, dispatched through a small
// switch — is grounded on
// aalhour-rockyardkv/internal/compression/compression.go, narrowed to
// the one third-party algorithm actually wired: Snappy.
package compress

import (
	"fmt"

	"github.com/golang/snappy"
)

// Type is the one-byte codec tag stored as the first byte of a
// compressed overflow payload, so a reader can decompress without
// consulting the schema.
type Type uint8

const (
	None   Type = 0x0
	Snappy Type = 0x1
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Encode compresses src with codec t, returning a buffer that starts
// with the one-byte type tag.
func Encode(t Type, src []byte) []byte {
	switch t {
	case None:
		out := make([]byte, 1+len(src))
		out[0] = byte(None)
		copy(out[1:], src)
		return out
	case Snappy:
		out := snappy.Encode(nil, src)
		tagged := make([]byte, 1+len(out))
		tagged[0] = byte(Snappy)
		copy(tagged[1:], out)
		return tagged
	default:
		panic(fmt.Errorf("compress: unknown codec %d", t))
	}
}

// Decode reads the one-byte type tag from data and returns the
// decompressed payload.
func Decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("compress: empty payload")
	}
	t, body := Type(data[0]), data[1:]
	switch t {
	case None:
		return body, nil
	case Snappy:
		return snappy.Decode(nil, body)
	default:
		return nil, fmt.Errorf("compress: unknown codec %d", t)
	}
}

// ShouldCompress reports whether a raw payload of size n is worth
// spilling through Encode rather than stored as None (spec.md leaves the
// inline/overflow threshold to the page layer; this is purely the
// compression-worthwhile heuristic).
func ShouldCompress(t Type, n int) bool {
	return t != None && n >= 64
}
