package codec

import "encoding/binary"

// Decode parses one encoded value from the start of data. For string,
// keyword, bytes, and uuid it returns a Value whose payload slice
// references data directly (zero-copy) — valid only as long as the
// underlying storage (typically an mmap region) is not remapped.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, dataErrf(data, 0, nil, "empty value")
	}
	tag := Tag(data[0])
	if !tag.valid() {
		return Value{}, dataErrf(data, 0, nil, "invalid tag %d", data[0])
	}
	rest := data[1:]
	switch tag {
	case TagNil:
		return Nil(), nil
	case TagBool:
		if len(rest) < 1 {
			return Value{}, dataErrf(data, 1, nil, "truncated bool")
		}
		return Bool(rest[0] != 0), nil
	case TagI64:
		if len(rest) < 8 {
			return Value{}, dataErrf(data, 1, nil, "truncated i64")
		}
		return Value{tag: TagI64, num: signFlip(binary.BigEndian.Uint64(rest))}, nil
	case TagF64:
		if len(rest) < 8 {
			return Value{}, dataErrf(data, 1, nil, "truncated f64")
		}
		return Value{tag: TagF64, num: decodeFloatBits(binary.BigEndian.Uint64(rest))}, nil
	case TagRef:
		if len(rest) < 8 {
			return Value{}, dataErrf(data, 1, nil, "truncated ref")
		}
		return Ref(binary.BigEndian.Uint64(rest)), nil
	case TagInstant:
		if len(rest) < 8 {
			return Value{}, dataErrf(data, 1, nil, "truncated instant")
		}
		return Instant(int64(signFlip(binary.BigEndian.Uint64(rest)))), nil
	case TagUUID:
		if len(rest) < 16 {
			return Value{}, dataErrf(data, 1, nil, "truncated uuid")
		}
		return Value{tag: TagUUID, bytes: rest[:16]}, nil
	case TagString, TagKeyword, TagBytes:
		if len(rest) < 4 {
			return Value{}, dataErrf(data, 1, nil, "truncated length prefix")
		}
		n := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		if uint64(len(rest)) < uint64(n) {
			return Value{}, dataErrf(data, 5, nil, "truncated payload: want %d have %d", n, len(rest))
		}
		return Value{tag: tag, bytes: rest[:n]}, nil
	default:
		return Value{}, dataErrf(data, 0, nil, "unhandled tag %d", tag)
	}
}

// EncodedLen returns the number of bytes the single encoded value
// starting at data occupies, without fully decoding it. Required to
// parse concatenated composite keys (spec.md §4.1).
func EncodedLen(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, dataErrf(data, 0, nil, "empty value")
	}
	tag := Tag(data[0])
	if !tag.valid() {
		return 0, dataErrf(data, 0, nil, "invalid tag %d", data[0])
	}
	if n := tag.fixedPayloadSize(); n >= 0 {
		if len(data) < 1+n {
			return 0, dataErrf(data, 0, nil, "truncated %s", tag)
		}
		return 1 + n, nil
	}
	if len(data) < 5 {
		return 0, dataErrf(data, 0, nil, "truncated length prefix")
	}
	n := binary.BigEndian.Uint32(data[1:5])
	total := 5 + int(n)
	if len(data) < total {
		return 0, dataErrf(data, 0, nil, "truncated payload")
	}
	return total, nil
}

// decodeFloatBits inverts encodeFloatBits.
func decodeFloatBits(stored uint64) uint64 {
	const signBit = uint64(1) << 63
	if stored == signBit {
		return 0 // canonical ±0 encoding decodes to +0.0
	}
	if stored&signBit != 0 {
		return stored &^ signBit
	}
	return ^stored
}
