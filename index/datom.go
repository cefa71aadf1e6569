package index

import "github.com/n1kben/zat/codec"

// Datom is the immutable fact spec.md's GLOSSARY defines: (entity,
// attribute, value, tx, op). Op true is an assertion, false a
// retraction.
type Datom struct {
	Entity uint64
	Attr   uint64
	Value  codec.Value
	Tx     uint64
	Op     bool
}
