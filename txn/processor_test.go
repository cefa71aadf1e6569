package txn

import (
	"fmt"
	"testing"

	"github.com/n1kben/zat/codec"
	"github.com/n1kben/zat/freelist"
	"github.com/n1kben/zat/index"
	"github.com/n1kben/zat/schema"
	"github.com/stretchr/testify/require"
)

type fakePager struct {
	pageSize int
	pages    map[uint64][]byte
	next     uint64
}

func newFakePager(pageSize int) *fakePager {
	return &fakePager{pageSize: pageSize, pages: map[uint64][]byte{}, next: 1}
}

func (p *fakePager) PageSize() int { return p.pageSize }

func (p *fakePager) ReadPage(id uint64) []byte {
	buf, ok := p.pages[id]
	if !ok {
		panic(fmt.Sprintf("fakePager: read of unallocated page %d", id))
	}
	return buf
}

func (p *fakePager) WritePage(id uint64, buf []byte) error {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	p.pages[id] = cp
	return nil
}

func (p *fakePager) AllocPage() uint64 {
	id := p.next
	p.next++
	return id
}

// bootstrapped returns a fresh index.Manager with the eight reserved
// attributes installed under tx 0, plus a user-defined `:person/name`
// string attribute and `:person/likes` ref attribute for tests to exercise.
func bootstrapped(t *testing.T) (index.Manager, *schema.Cache, uint64) {
	t.Helper()
	pager := newFakePager(512)
	mgr := index.Open(index.Roots{}, pager)
	mgr, err := schema.Bootstrap(mgr, 0)
	require.NoError(t, err)

	nameAttr := schema.EntityID(schema.PartitionSchema, schema.NextEntityAfterBootstrap)
	likesAttr := nameAttr + 1
	emailAttr := nameAttr + 2

	install := func(id uint64, ident, valueType, cardinality, unique string, indexed bool) {
		datoms := []index.Datom{
			{Entity: id, Attr: schema.AttrIdent, Value: codec.Keyword(ident), Tx: 0, Op: true},
			{Entity: id, Attr: schema.AttrValueType, Value: codec.Keyword(valueType), Tx: 0, Op: true},
			{Entity: id, Attr: schema.AttrCardinality, Value: codec.Keyword(cardinality), Tx: 0, Op: true},
			{Entity: id, Attr: schema.AttrUnique, Value: codec.Keyword(unique), Tx: 0, Op: true},
			{Entity: id, Attr: schema.AttrIndex, Value: codec.Bool(indexed), Tx: 0, Op: true},
		}
		for _, d := range datoms {
			mgr, err = mgr.InsertDatom(d, d.Attr == schema.AttrIdent, false)
			require.NoError(t, err)
		}
	}

	install(nameAttr, "person/name", "db.type/string", "db.cardinality/one", "db.unique/none", false)
	install(likesAttr, "person/likes", "db.type/ref", "db.cardinality/many", "db.unique/none", false)
	install(emailAttr, "person/email", "db.type/string", "db.cardinality/one", "db.unique/value", false)

	cache, err := schema.Load(mgr)
	require.NoError(t, err)

	return mgr, cache, schema.NextEntityAfterBootstrap + 3
}

func fdbOf(t *testing.T, mgr index.Manager) freelist.FreeDB {
	t.Helper()
	pager := mgr.EAV.Pager.(*fakePager)
	return freelist.Open(0, pager)
}

func TestTransactAssertsNewEntity(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/name", Value: codec.Str("Alice")},
	}, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.TxID)
	require.Len(t, res.Tempids, 1)
	require.False(t, res.TouchedDB)

	aliceID := res.Tempids["alice"]
	require.Equal(t, schema.PartitionUser, schema.Partition(aliceID))

	nameID := mustResolve(t, cache, "person/name")
	v, found := res.Manager.LookupEntityAttr(aliceID, nameID)
	require.True(t, found)
	require.Equal(t, "Alice", v.AsString())
}

func TestTransactCardinalityOneReplace(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	nameID, ok := cache.ResolveIdent("person/name")
	require.True(t, ok)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/name", Value: codec.Str("Alice")},
	}, 0)
	require.NoError(t, err)
	aliceID := res.Tempids["alice"]

	res2, err := Transact(res.Manager, res.FreeDB, cache, res.TxID, res.NextEntity, res.DatomCount, []Stmt{
		{Op: OpAssert, Entity: KnownEntity(aliceID), Attr: "person/name", Value: codec.Str("Alicia")},
	}, 0)
	require.NoError(t, err)

	v, found := res2.Manager.LookupEntityAttr(aliceID, nameID)
	require.True(t, found)
	require.Equal(t, "Alicia", v.AsString())

	require.Len(t, res2.Changes.Changes, 3) // retract old, assert new, tx entity's txInstant
	require.Equal(t, OpRetract, res2.Changes.Changes[0].Op)
	require.Equal(t, OpAssert, res2.Changes.Changes[1].Op)
	require.Equal(t, OpAssert, res2.Changes.Changes[2].Op)
}

func TestTransactCardinalityOneIdempotentReassert(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/name", Value: codec.Str("Alice")},
	}, 0)
	require.NoError(t, err)
	aliceID := res.Tempids["alice"]

	res2, err := Transact(res.Manager, res.FreeDB, cache, res.TxID, res.NextEntity, res.DatomCount, []Stmt{
		{Op: OpAssert, Entity: KnownEntity(aliceID), Attr: "person/name", Value: codec.Str("Alice")},
	}, 0)
	require.NoError(t, err)
	require.Len(t, res2.Changes.Changes, 1) // only the tx entity's txInstant assert
	require.Equal(t, res.DatomCount, res2.DatomCount-1)
}

func TestTransactUniqueValueConflictAborts(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/email", Value: codec.Str("a@example.com")},
	}, 0)
	require.NoError(t, err)

	_, err = Transact(res.Manager, res.FreeDB, cache, res.TxID, res.NextEntity, res.DatomCount, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("bob"), Attr: "person/email", Value: codec.Str("a@example.com")},
	}, 0)
	require.ErrorIs(t, err, ErrUniqueValueConflict)
}

func TestTransactUniqueIdentityUpsertRemapsTempid(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	// :db/ident itself carries db.unique/identity; asserting a known
	// ident keyword on a fresh tempid should resolve to the existing
	// bootstrap attribute entity rather than allocating a new one.
	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("x"), Attr: "db/ident", Value: codec.Keyword("person/name")},
	}, 0)
	require.NoError(t, err)

	nameID, ok := cache.ResolveIdent("person/name")
	require.True(t, ok)
	require.Equal(t, nameID, res.Tempids["x"])
}

func TestTransactUnknownAttributeFails(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	_, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("x"), Attr: "person/nonexistent", Value: codec.Str("v")},
	}, 0)
	require.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestTransactTypeMismatchFails(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	_, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("x"), Attr: "person/name", Value: codec.Int(5)},
	}, 0)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestTransactTempidTouchingBootstrapAllocatesSchemaPartition(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("newattr"), Attr: "db/ident", Value: codec.Keyword("person/nickname")},
		{Op: OpAssert, Entity: TempidEntity("newattr"), Attr: "db/valueType", Value: codec.Keyword("db.type/string")},
	}, 0)
	require.NoError(t, err)
	require.Equal(t, schema.PartitionSchema, schema.Partition(res.Tempids["newattr"]))
	require.True(t, res.TouchedDB)
}

func TestTransactOrdinaryDataOpDoesNotTouchDB(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/name", Value: codec.Str("Alice")},
	}, 0)
	require.NoError(t, err)
	require.False(t, res.TouchedDB)
}

func TestTransactCardinalityManyAccumulatesAndDedups(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/likes", Value: codec.Ref(100)},
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/likes", Value: codec.Ref(200)},
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/likes", Value: codec.Ref(100)}, // dup
	}, 0)
	require.NoError(t, err)
	require.Len(t, res.Changes.Changes, 3) // 2 distinct refs + tx entity's txInstant
}

func TestTransactRetractRecordsChange(t *testing.T) {
	mgr, cache, nextEntity := bootstrapped(t)
	fdb := fdbOf(t, mgr)

	res, err := Transact(mgr, fdb, cache, 0, nextEntity, 0, []Stmt{
		{Op: OpAssert, Entity: TempidEntity("alice"), Attr: "person/name", Value: codec.Str("Alice")},
	}, 0)
	require.NoError(t, err)
	aliceID := res.Tempids["alice"]

	res2, err := Transact(res.Manager, res.FreeDB, cache, res.TxID, res.NextEntity, res.DatomCount, []Stmt{
		{Op: OpRetract, Entity: KnownEntity(aliceID), Attr: "person/name", Value: codec.Str("Alice")},
	}, 0)
	require.NoError(t, err)
	require.Len(t, res2.Changes.Changes, 2) // retract + tx entity's txInstant
	require.Equal(t, OpRetract, res2.Changes.Changes[0].Op)

	_, found := res2.Manager.LookupEntityAttr(aliceID, mustResolve(t, cache, "person/name"))
	require.False(t, found)
}

func mustResolve(t *testing.T, cache *schema.Cache, ident string) uint64 {
	t.Helper()
	id, ok := cache.ResolveIdent(ident)
	require.True(t, ok)
	return id
}
