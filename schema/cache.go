package schema

import (
	"github.com/n1kben/zat/codec"
	"github.com/n1kben/zat/index"
)

// Cache is the in-memory schema snapshot of spec.md §4.7: reconstructed
// by iterating every partition-db entity in EAV in key order, reloaded
// "after any transaction that touched a partition-db entity."
type Cache struct {
	attrs   map[uint64]*Attr
	byIdent map[string]uint64
}

// Load rebuilds a Cache by scanning EAV. Schema-partition entities sort
// first (their raw ids are < 1<<PartitionShift, below every tx- or
// user-partition entity), so the scan stops at the first non-schema
// entity rather than walking the whole index.
func Load(mgr index.Manager) (*Cache, error) {
	c := &Cache{attrs: map[uint64]*Attr{}, byIdent: map[string]uint64{}}

	it := mgr.EAV.SeekFirst()
	for it.Valid() {
		entity := index.DecodeEAVEntity(it.Key())
		if Partition(entity) != PartitionSchema {
			break
		}
		attr := index.DecodeEAVAttr(it.Key())
		value, err := index.DecodeEAVValue(it.Key())
		if err != nil {
			return nil, err
		}
		a, ok := c.attrs[entity]
		if !ok {
			a = &Attr{ID: entity}
			c.attrs[entity] = a
		}
		applyMetaDatom(a, attr, value)
		it.Next()
	}

	for _, a := range c.attrs {
		if a.Ident != "" {
			c.byIdent[a.Ident] = a.ID
		}
	}
	return c, nil
}

func applyMetaDatom(a *Attr, attr uint64, value codec.Value) {
	switch attr {
	case AttrIdent:
		a.Ident = value.AsString()
	case AttrValueType:
		a.ValueType = valueTypeTagFromKeyword(value.AsString())
	case AttrCardinality:
		if value.AsString() == "db.cardinality/many" {
			a.Cardinality = CardinalityMany
		} else {
			a.Cardinality = CardinalityOne
		}
	case AttrUnique:
		switch value.AsString() {
		case "db.unique/identity":
			a.Unique = UniqueIdentity
		case "db.unique/value":
			a.Unique = UniqueValue
		default:
			a.Unique = UniqueNone
		}
	case AttrIndex:
		a.Indexed = value.AsBool()
	case AttrIsComponent:
		a.IsComponent = value.AsBool()
	case AttrDoc:
		a.Doc = value.AsString()
	}
}

func valueTypeTagFromKeyword(kw string) codec.Tag {
	switch kw {
	case "db.type/string":
		return codec.TagString
	case "db.type/keyword":
		return codec.TagKeyword
	case "db.type/long", "db.type/bigint":
		return codec.TagI64
	case "db.type/float", "db.type/double":
		return codec.TagF64
	case "db.type/boolean":
		return codec.TagBool
	case "db.type/ref":
		return codec.TagRef
	case "db.type/instant":
		return codec.TagInstant
	case "db.type/uuid":
		return codec.TagUUID
	case "db.type/bytes":
		return codec.TagBytes
	default:
		return codec.TagNil
	}
}

// ResolveIdent looks up an attribute entity id by its `:db/ident` name.
func (c *Cache) ResolveIdent(ident string) (uint64, bool) {
	id, ok := c.byIdent[ident]
	return id, ok
}

// GetAttr returns the cached attribute state for an entity id.
func (c *Cache) GetAttr(id uint64) (*Attr, bool) {
	a, ok := c.attrs[id]
	return a, ok
}

// ValidateType reports whether v's tag matches attribute id's declared
// value type. An unknown attribute never validates.
func (c *Cache) ValidateType(id uint64, v codec.Value) bool {
	a, ok := c.attrs[id]
	return ok && v.Tag() == a.ValueType
}

// IsIndexed reports whether attribute id should be mirrored into AVE:
// explicitly `:db/index`, or implicitly because it carries a uniqueness
// constraint (spec.md §4.6's AVE population rule).
func (c *Cache) IsIndexed(id uint64) bool {
	a := c.attrs[id]
	return a != nil && (a.Indexed || a.Unique != UniqueNone)
}

// IsRef reports whether attribute id's value type is `:db.type/ref`.
func (c *Cache) IsRef(id uint64) bool {
	a := c.attrs[id]
	return a != nil && a.ValueType == codec.TagRef
}

// Cardinality returns attribute id's cardinality, defaulting to one for
// an unknown attribute (callers must have already validated existence).
func (c *Cache) Cardinality(id uint64) Cardinality {
	if a := c.attrs[id]; a != nil {
		return a.Cardinality
	}
	return CardinalityOne
}

// Unique returns attribute id's uniqueness constraint, defaulting to
// none for an unknown attribute.
func (c *Cache) Unique(id uint64) Unique {
	if a := c.attrs[id]; a != nil {
		return a.Unique
	}
	return UniqueNone
}
