package txn

import (
	"fmt"

	"github.com/n1kben/zat/codec"
	"github.com/n1kben/zat/freelist"
	"github.com/n1kben/zat/index"
	"github.com/n1kben/zat/schema"
)

// Fixed in-process limits, spec.md §7's TempidOverflow/DatomOverflow.
const (
	MaxTempidsPerTx = 10_000
	MaxDatomsPerTx  = 1 << 20
)

// RefKind discriminates the three entity_ref shapes spec.md §4.8 allows
// for one Stmt.
type RefKind uint8

const (
	RefKnown RefKind = iota
	RefTempid
	RefTxEntity
)

// EntityRef is spec.md §4.8's `entity_ref ∈ {KnownId(u64) | Tempid(name)
// | TxEntity}`.
type EntityRef struct {
	Kind   RefKind
	Known  uint64
	Tempid string
}

func KnownEntity(id uint64) EntityRef    { return EntityRef{Kind: RefKnown, Known: id} }
func TempidEntity(name string) EntityRef { return EntityRef{Kind: RefTempid, Tempid: name} }
func TxEntityRef() EntityRef             { return EntityRef{Kind: RefTxEntity} }

// Stmt is one input operation: `(op, entity_ref, attr_keyword, value)`.
type Stmt struct {
	Op     Op
	Entity EntityRef
	Attr   string
	Value  codec.Value
}

// Result is spec.md §4.8 step 9's `{tx_id, tempid_map, datom_count}`,
// plus every root a caller must persist into the next meta write and the
// post-commit hook data (step 8).
type Result struct {
	Manager    index.Manager
	FreeDB     freelist.FreeDB
	TxID       uint64
	NextEntity uint64
	DatomCount uint64
	Tempids    map[string]uint64
	Changes    *ChangeSet
	TouchedDB  bool // an op wrote to a db-partition entity: caller must reload the schema cache
	NextChunk  int  // next unused FreeDB chunk index under TxID, for a caller's later Commit under the same tx id
}

type resolvedStmt struct {
	stmt Stmt
	attr *schema.Attr
}

// Transact runs spec.md §4.8's pipeline steps 1-6. Steps 7-8 — the
// meta-slot write, sync/remap, and schema cache reload — are the
// caller's (zat.Database's) responsibility, since they need the
// store.File handle this package does not hold. On any returned error
// the caller's existing index.Manager/freelist.FreeDB/counters remain
// valid and untouched, per spec.md §4.8's atomicity contract.
func Transact(
	mgr index.Manager,
	fdb freelist.FreeDB,
	cache *schema.Cache,
	prevTxID, nextEntity, datomCount uint64,
	ops []Stmt,
	nowMicros int64,
) (Result, error) {
	rs, err := validate(cache, ops)
	if err != nil {
		return Result{}, err
	}

	table, next, err := allocateTempids(cache, ops, nextEntity)
	if err != nil {
		return Result{}, err
	}

	resolveUpserts(mgr, rs, table)

	return generateAndWrite(mgr, fdb, cache, table, prevTxID, next, datomCount, rs, nowMicros)
}

// validate implements step 1: resolve every attr keyword and check its
// declared type against asserted values.
func validate(cache *schema.Cache, ops []Stmt) ([]resolvedStmt, error) {
	rs := make([]resolvedStmt, len(ops))
	for i, s := range ops {
		attrID, ok := cache.ResolveIdent(s.Attr)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, s.Attr)
		}
		a, _ := cache.GetAttr(attrID)
		if s.Op == OpAssert && !cache.ValidateType(attrID, s.Value) {
			return nil, fmt.Errorf("%w: %q expects %v, got %v", ErrTypeMismatch, s.Attr, a.ValueType, s.Value.Tag())
		}
		rs[i] = resolvedStmt{stmt: s, attr: a}
	}
	return rs, nil
}

// allocateTempids implements step 2: one fresh entity id per distinct
// tempid name, in the schema partition if any op on that name references
// a bootstrap attribute, otherwise the user partition.
func allocateTempids(cache *schema.Cache, ops []Stmt, nextEntity uint64) (*tempidTable, uint64, error) {
	table := newTempidTable()
	var order []string
	seen := map[string]bool{}
	touchesBootstrap := map[string]bool{}

	for _, s := range ops {
		if s.Entity.Kind != RefTempid {
			continue
		}
		name := s.Entity.Tempid
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
		if attrID, ok := cache.ResolveIdent(s.Attr); ok {
			if attrID >= schema.AttrIdent && attrID <= schema.AttrTxInstant {
				touchesBootstrap[name] = true
			}
		}
	}
	if len(order) > MaxTempidsPerTx {
		return nil, 0, ErrTempidOverflow
	}

	next := nextEntity
	for _, name := range order {
		partition := schema.PartitionUser
		if touchesBootstrap[name] {
			partition = schema.PartitionSchema
		}
		table.set(name, schema.EntityID(partition, next))
		next++
	}
	return table, next, nil
}

// resolveUpserts implements step 3: for each unique-identity assert on a
// tempid entity, remap that tempid to any existing (attr, value) holder
// found in AVE.
func resolveUpserts(mgr index.Manager, rs []resolvedStmt, table *tempidTable) {
	for _, r := range rs {
		if r.stmt.Op != OpAssert || r.attr.Unique != schema.UniqueIdentity {
			continue
		}
		if r.stmt.Entity.Kind != RefTempid {
			continue
		}
		if existing, found := mgr.ProbeAVE(r.attr.ID, r.stmt.Value); found {
			table.set(r.stmt.Entity.Tempid, existing)
		}
	}
}

// generateAndWrite implements steps 4-6.
func generateAndWrite(
	mgr index.Manager,
	fdb freelist.FreeDB,
	cache *schema.Cache,
	table *tempidTable,
	prevTxID, nextEntity, datomCount uint64,
	rs []resolvedStmt,
	nowMicros int64,
) (Result, error) {
	newTxID := prevTxID + 1
	txEntityID := schema.EntityID(schema.PartitionTx, newTxID)

	tracker := freelist.NewTracker()
	mgr = mgr.WithFree(tracker)
	dedup := newDedupSet()
	cs := &ChangeSet{TxID: newTxID}
	count := datomCount
	touchedDB := false

	resolveEntity := func(ref EntityRef) uint64 {
		switch ref.Kind {
		case RefKnown:
			return ref.Known
		case RefTempid:
			return table.get(ref.Tempid)
		default:
			return txEntityID
		}
	}

	for _, r := range rs {
		s, attr := r.stmt, r.attr
		entity := resolveEntity(s.Entity)
		if schema.Partition(entity) == schema.PartitionSchema {
			touchedDB = true
		}

		var err error
		switch s.Op {
		case OpAssert:
			count, err = applyAssert(&mgr, cache, dedup, cs, entity, attr, s.Value, newTxID, count)
		case OpRetract:
			mgr, err = mgr.DeleteDatom(index.Datom{Entity: entity, Attr: attr.ID, Value: s.Value}, cache.IsIndexed(attr.ID), cache.IsRef(attr.ID))
			if err == nil {
				mgr, err = mgr.InsertTxLogOnly(index.Datom{Entity: entity, Attr: attr.ID, Value: s.Value, Tx: newTxID, Op: false})
				count++
				cs.record(OpRetract, entity, attr.ID, encodeValue(s.Value))
			}
		}
		if err != nil {
			return Result{}, err
		}
		if count > MaxDatomsPerTx {
			return Result{}, ErrDatomOverflow
		}
	}

	// Step 5: tx entity.
	var err error
	mgr, err = mgr.InsertDatom(index.Datom{Entity: txEntityID, Attr: schema.AttrTxInstant, Value: codec.Instant(nowMicros), Tx: newTxID, Op: true}, cache.IsIndexed(schema.AttrTxInstant), false)
	if err != nil {
		return Result{}, err
	}
	count++
	cs.record(OpAssert, txEntityID, schema.AttrTxInstant, encodeValue(codec.Instant(nowMicros)))

	// Step 6: commit pages into FreeDB; FreeDB.Commit handles its own
	// self-referential carry-forward internally. The returned chunk index
	// is the next one free under newTxID, so a caller that later reclaims
	// pages and commits more chunks under this same tx id (zat.Database's
	// post-commit reclaim pass) can continue numbering from there instead
	// of colliding with these entries.
	chunks := tracker.Drain()
	fdb, nextChunk, err := fdb.Commit(newTxID, 0, chunks)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Manager:    mgr,
		FreeDB:     fdb,
		TxID:       newTxID,
		NextEntity: nextEntity,
		DatomCount: count,
		Tempids:    table.ids,
		Changes:    cs,
		TouchedDB:  touchedDB,
		NextChunk:  nextChunk,
	}, nil
}

// applyAssert writes one assert Stmt per spec.md §4.8 step 4's three
// cases (unique-value conflict check, cardinality-one replace,
// cardinality-many insert) and returns the updated datom count.
func applyAssert(mgr *index.Manager, cache *schema.Cache, dedup *dedupSet, cs *ChangeSet, entity uint64, attr *schema.Attr, value codec.Value, txID, count uint64) (uint64, error) {
	if attr.Unique == schema.UniqueValue {
		if existing, found := mgr.ProbeAVE(attr.ID, value); found && existing != entity {
			return count, ErrUniqueValueConflict
		}
	}

	if attr.Cardinality == schema.CardinalityMany {
		key := index.EncodeEAVKey(entity, attr.ID, value)
		if dedup.seenBefore(key) {
			return count, nil
		}
		m, err := mgr.InsertDatom(index.Datom{Entity: entity, Attr: attr.ID, Value: value, Tx: txID, Op: true}, cache.IsIndexed(attr.ID), cache.IsRef(attr.ID))
		if err != nil {
			return count, err
		}
		*mgr = m
		cs.record(OpAssert, entity, attr.ID, encodeValue(value))
		return count + 1, nil
	}

	// Cardinality one.
	if existing, ok := mgr.LookupEntityAttr(entity, attr.ID); ok {
		if valuesEqual(existing, value) {
			return count, nil // idempotent re-assertion
		}
		m, err := mgr.DeleteDatom(index.Datom{Entity: entity, Attr: attr.ID, Value: existing}, cache.IsIndexed(attr.ID), cache.IsRef(attr.ID))
		if err != nil {
			return count, err
		}
		*mgr = m
		m, err = mgr.InsertTxLogOnly(index.Datom{Entity: entity, Attr: attr.ID, Value: existing, Tx: txID, Op: false})
		if err != nil {
			return count, err
		}
		*mgr = m
		count++
		cs.record(OpRetract, entity, attr.ID, encodeValue(existing))
	}
	m, err := mgr.InsertDatom(index.Datom{Entity: entity, Attr: attr.ID, Value: value, Tx: txID, Op: true}, cache.IsIndexed(attr.ID), cache.IsRef(attr.ID))
	if err != nil {
		return count, err
	}
	*mgr = m
	cs.record(OpAssert, entity, attr.ID, encodeValue(value))
	return count + 1, nil
}

func encodeValue(v codec.Value) []byte {
	buf := make([]byte, codec.EncodedSize(v))
	codec.Encode(v, buf)
	return buf
}

func valuesEqual(a, b codec.Value) bool {
	return codec.CompareEncoded(encodeValue(a), encodeValue(b)) == codec.Eq
}
