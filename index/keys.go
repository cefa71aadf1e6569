package index

import (
	"encoding/binary"

	"github.com/n1kben/zat/codec"
)

// Composite key layouts, spec.md §4.6: every index is a bytewise-sortable
// big-endian tuple, and every B+ tree value is empty — the key alone
// carries all semantic content.

// EncodeEAVKey builds the `[E:8][A:8][encoded V]` key.
func EncodeEAVKey(entity, attr uint64, value codec.Value) []byte {
	buf := make([]byte, 16, 16+codec.EncodedSize(value))
	binary.BigEndian.PutUint64(buf[0:8], entity)
	binary.BigEndian.PutUint64(buf[8:16], attr)
	return codec.AppendEncode(buf, value)
}

// EncodeEAVPrefix builds the `[E:8][A:8]` prefix used to probe for any
// existing value on (entity, attr), per spec.md §4.8 step 4's
// cardinality-one replace logic.
func EncodeEAVPrefix(entity, attr uint64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], entity)
	binary.BigEndian.PutUint64(buf[8:16], attr)
	return buf
}

func DecodeEAVEntity(key []byte) uint64 { return binary.BigEndian.Uint64(key[0:8]) }
func DecodeEAVAttr(key []byte) uint64   { return binary.BigEndian.Uint64(key[8:16]) }
func DecodeEAVValue(key []byte) (codec.Value, error) {
	return codec.Decode(key[16:])
}

// EncodeAVEKey builds the `[A:8][encoded V][E:8]` key.
func EncodeAVEKey(attr uint64, value codec.Value, entity uint64) []byte {
	buf := make([]byte, 8, 8+codec.EncodedSize(value)+8)
	binary.BigEndian.PutUint64(buf, attr)
	buf = codec.AppendEncode(buf, value)
	eoff := len(buf)
	buf = append(buf, make([]byte, 8)...)
	binary.BigEndian.PutUint64(buf[eoff:], entity)
	return buf
}

// EncodeAVEPrefix builds the `[A:8][encoded V]` prefix, for uniqueness
// probes that don't yet know a candidate entity (spec.md §4.8 steps 3/4).
func EncodeAVEPrefix(attr uint64, value codec.Value) []byte {
	buf := make([]byte, 8, 8+codec.EncodedSize(value))
	binary.BigEndian.PutUint64(buf, attr)
	return codec.AppendEncode(buf, value)
}

func DecodeAVEAttr(key []byte) uint64 { return binary.BigEndian.Uint64(key[0:8]) }
func DecodeAVEValue(key []byte) (codec.Value, error) {
	n, err := codec.EncodedLen(key[8:])
	if err != nil {
		return codec.Value{}, err
	}
	return codec.Decode(key[8 : 8+n])
}
func DecodeAVEEntity(key []byte) uint64 { return binary.BigEndian.Uint64(key[len(key)-8:]) }

// EncodeVAEKey builds the `[V(ref):8][A:8][E:8]` key. Only populated for
// attributes of type ref, so the value is always a bare entity id rather
// than a tagged codec.Value.
func EncodeVAEKey(valueRef, attr, entity uint64) []byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[0:8], valueRef)
	binary.BigEndian.PutUint64(buf[8:16], attr)
	binary.BigEndian.PutUint64(buf[16:24], entity)
	return buf
}

func DecodeVAEValueRef(key []byte) uint64 { return binary.BigEndian.Uint64(key[0:8]) }
func DecodeVAEAttr(key []byte) uint64     { return binary.BigEndian.Uint64(key[8:16]) }
func DecodeVAEEntity(key []byte) uint64   { return binary.BigEndian.Uint64(key[16:24]) }

// EncodeTxLogKey builds the `[Tx:8][E:8][A:8][encoded V][Op:1]` key.
func EncodeTxLogKey(tx, entity, attr uint64, value codec.Value, op bool) []byte {
	buf := make([]byte, 24, 24+codec.EncodedSize(value)+1)
	binary.BigEndian.PutUint64(buf[0:8], tx)
	binary.BigEndian.PutUint64(buf[8:16], entity)
	binary.BigEndian.PutUint64(buf[16:24], attr)
	buf = codec.AppendEncode(buf, value)
	opByte := byte(0)
	if op {
		opByte = 1
	}
	return append(buf, opByte)
}

// EncodeTxLogPrefix builds the `[Tx:8]` prefix, for scanning one
// transaction's history.
func EncodeTxLogPrefix(tx uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, tx)
	return buf
}

func DecodeTxLogTx(key []byte) uint64     { return binary.BigEndian.Uint64(key[0:8]) }
func DecodeTxLogEntity(key []byte) uint64 { return binary.BigEndian.Uint64(key[8:16]) }
func DecodeTxLogAttr(key []byte) uint64   { return binary.BigEndian.Uint64(key[16:24]) }
func DecodeTxLogValue(key []byte) (codec.Value, error) {
	return codec.Decode(key[24 : len(key)-1])
}
func DecodeTxLogOp(key []byte) bool { return key[len(key)-1] != 0 }
