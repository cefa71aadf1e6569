package schema

import "github.com/n1kben/zat/codec"

// Cardinality is spec.md §4.8's `:db/cardinality` discriminator.
type Cardinality uint8

const (
	CardinalityOne Cardinality = iota
	CardinalityMany
)

// Unique is spec.md §4.8's `:db/unique` discriminator.
type Unique uint8

const (
	UniqueNone Unique = iota
	UniqueValue
	UniqueIdentity
)

// Attr is the cached, decoded shape of one attribute entity's
// self-describing datoms, per spec.md §4.7's per-attribute cache state.
type Attr struct {
	ID          uint64
	Ident       string
	ValueType   codec.Tag
	Cardinality Cardinality
	Unique      Unique
	Indexed     bool
	IsComponent bool
	Doc         string
}
