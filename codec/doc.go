// Package codec implements the tagged, bytewise-sortable binary encoding
// of ZatDB values (spec component C1).
//
// Every value is a one-byte tag followed by a type-specific payload chosen
// so that plain lexicographic comparison of the encoded bytes reproduces
// the semantic order across and within tags. See DESIGN.md for why this
// package has no teacher precedent (edb's own value envelope is a varint
// header wrapping a MsgPack blob, which is not order-preserving) and is
// instead built directly from spec.md §4.1.
package codec
