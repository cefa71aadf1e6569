package codec

import (
	"fmt"
	"math"
)

// UUID is a 16-byte universally unique identifier.
type UUID [16]byte

// Value is a tagged sum of the scalar kinds ZatDB datoms carry: nil, bool,
// i64, f64, string, keyword, ref(entity), instant(µs since epoch), uuid,
// and bytes. It is deliberately small and copyable; the variable-length
// kinds hold a slice that, once decoded from an mmap region, must not
// outlive that region's snapshot (see store.File.ReadPage for the
// lifetime rule spec.md §9 calls out).
type Value struct {
	tag   Tag
	num   uint64 // bool(0/1), i64 (as bits), f64 (as bits), ref, instant
	bytes []byte // string, keyword, bytes payload, or uuid[:] aliased
}

func Nil() Value                { return Value{tag: TagNil} }
func Bool(b bool) Value         { return Value{tag: TagBool, num: boolToUint(b)} }
func Int(v int64) Value         { return Value{tag: TagI64, num: uint64(v)} }
func Float(v float64) Value     { return Value{tag: TagF64, num: math.Float64bits(v)} }
func Str(s string) Value        { return Value{tag: TagString, bytes: []byte(s)} }
func Keyword(s string) Value    { return Value{tag: TagKeyword, bytes: []byte(s)} }
func Ref(entity uint64) Value   { return Value{tag: TagRef, num: entity} }
func Instant(us int64) Value    { return Value{tag: TagInstant, num: uint64(us)} }
func Bytes(b []byte) Value      { return Value{tag: TagBytes, bytes: b} }
func UUIDValue(u UUID) Value    { return Value{tag: TagUUID, bytes: append([]byte(nil), u[:]...)} }

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) AsBool() bool { return v.num != 0 }

func (v Value) AsInt() int64 { return int64(v.num) }

func (v Value) AsFloat() float64 { return math.Float64frombits(v.num) }

func (v Value) AsString() string { return string(v.bytes) }

func (v Value) AsRef() uint64 { return v.num }

func (v Value) AsInstant() int64 { return int64(v.num) }

func (v Value) AsBytes() []byte { return v.bytes }

func (v Value) AsUUID() UUID {
	var u UUID
	copy(u[:], v.bytes)
	return u
}

func (v Value) String() string {
	switch v.tag {
	case TagNil:
		return "nil"
	case TagBool:
		return fmt.Sprintf("%v", v.AsBool())
	case TagI64:
		return fmt.Sprintf("%d", v.AsInt())
	case TagF64:
		return fmt.Sprintf("%g", v.AsFloat())
	case TagString:
		return fmt.Sprintf("%q", v.AsString())
	case TagKeyword:
		return ":" + v.AsString()
	case TagRef:
		return fmt.Sprintf("#%d", v.AsRef())
	case TagInstant:
		return fmt.Sprintf("@%d", v.AsInstant())
	case TagUUID:
		return fmt.Sprintf("%x", v.bytes)
	case TagBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytes))
	default:
		return "<invalid>"
	}
}
