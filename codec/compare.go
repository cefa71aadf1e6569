package codec

import (
	"bytes"
	"encoding/binary"
)

// Ordering is the result of CompareEncoded.
type Ordering int

const (
	Lt Ordering = -1
	Eq Ordering = 0
	Gt Ordering = 1
)

// CompareEncoded compares two values in their Encode'd form, byte-for-byte,
// reproducing the semantic order established by Encode (spec.md §4.1's
// contract: value_order(a, b) == CompareEncoded(encode(a), encode(b))).
func CompareEncoded(a, b []byte) Ordering {
	ta, tb := Tag(a[0]), Tag(b[0])
	if ta != tb {
		return ordFromInt(int(ta) - int(tb))
	}
	switch ta {
	case TagNil:
		return Eq
	case TagBool, TagI64, TagF64, TagRef, TagInstant:
		n := ta.fixedPayloadSize()
		return ordFromInt(bytes.Compare(a[1:1+n], b[1:1+n]))
	case TagUUID:
		return ordFromInt(bytes.Compare(a[1:17], b[1:17]))
	case TagString, TagKeyword, TagBytes:
		na := binary.BigEndian.Uint32(a[1:5])
		nb := binary.BigEndian.Uint32(b[1:5])
		pa := a[5 : 5+na]
		pb := b[5 : 5+nb]
		return ordFromInt(bytes.Compare(pa, pb))
	default:
		panic("codec: invalid tag in CompareEncoded")
	}
}

func ordFromInt(n int) Ordering {
	switch {
	case n < 0:
		return Lt
	case n > 0:
		return Gt
	default:
		return Eq
	}
}
