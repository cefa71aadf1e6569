package schema

import (
	"github.com/n1kben/zat/codec"
	"github.com/n1kben/zat/index"
)

// Reserved meta-schema attribute entity ids, spec.md §4.7: "Eight
// reserved attribute entities (ids 1..8)".
const (
	AttrIdent       uint64 = 1
	AttrValueType   uint64 = 2
	AttrCardinality uint64 = 3
	AttrUnique      uint64 = 4
	AttrIndex       uint64 = 5
	AttrIsComponent uint64 = 6
	AttrDoc         uint64 = 7
	AttrTxInstant   uint64 = 8
)

// NextEntityAfterBootstrap is the next_entity_id spec.md §4.7 fixes once
// the eight reserved attributes are installed.
const NextEntityAfterBootstrap = 9

// BootstrapDatomCount is the number of datoms Bootstrap writes: five
// self-describing assertions (ident, valueType, cardinality, unique,
// index) for each of the eight reserved attributes.
const BootstrapDatomCount = 8 * 5

type bootstrapAttr struct {
	id          uint64
	ident       string
	valueType   string
	cardinality string
	unique      string
	indexed     bool
}

var bootstrapAttrs = []bootstrapAttr{
	{AttrIdent, "db/ident", "db.type/keyword", "db.cardinality/one", "db.unique/identity", true},
	{AttrValueType, "db/valueType", "db.type/keyword", "db.cardinality/one", "db.unique/none", false},
	{AttrCardinality, "db/cardinality", "db.type/keyword", "db.cardinality/one", "db.unique/none", false},
	{AttrUnique, "db/unique", "db.type/keyword", "db.cardinality/one", "db.unique/none", false},
	{AttrIndex, "db/index", "db.type/boolean", "db.cardinality/one", "db.unique/none", false},
	{AttrIsComponent, "db/isComponent", "db.type/boolean", "db.cardinality/one", "db.unique/none", false},
	{AttrDoc, "db/doc", "db.type/string", "db.cardinality/one", "db.unique/none", false},
	{AttrTxInstant, "db/txInstant", "db.type/instant", "db.cardinality/one", "db.unique/none", false},
}

// Bootstrap installs the eight reserved attributes' self-describing
// datoms into a fresh index.Manager at tx, per spec.md §4.7: "Bootstrap
// inserts their self-describing datoms into a fresh EAV and sets
// next_entity_id = 9."
//
// Only :db/ident ends up indexed — it is unique-identity, so Cache.IsIndexed
// reports it indexed and the txn upsert path probes AVE on it — so every
// other meta-datom reports indexed=false; none of the eight are
// ref-typed.
func Bootstrap(mgr index.Manager, tx uint64) (index.Manager, error) {
	for _, a := range bootstrapAttrs {
		datoms := []index.Datom{
			{Entity: a.id, Attr: AttrIdent, Value: codec.Keyword(a.ident), Tx: tx, Op: true},
			{Entity: a.id, Attr: AttrValueType, Value: codec.Keyword(a.valueType), Tx: tx, Op: true},
			{Entity: a.id, Attr: AttrCardinality, Value: codec.Keyword(a.cardinality), Tx: tx, Op: true},
			{Entity: a.id, Attr: AttrUnique, Value: codec.Keyword(a.unique), Tx: tx, Op: true},
			{Entity: a.id, Attr: AttrIndex, Value: codec.Bool(a.indexed), Tx: tx, Op: true},
		}
		for _, d := range datoms {
			indexed := d.Attr == AttrIdent
			var err error
			mgr, err = mgr.InsertDatom(d, indexed, false)
			if err != nil {
				return mgr, err
			}
		}
	}
	return mgr, nil
}
