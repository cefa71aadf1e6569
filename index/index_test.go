package index

import (
	"fmt"
	"testing"

	"github.com/n1kben/zat/codec"
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

func TestKeyEncodingOrderAndDecode(t *testing.T) {
	k1 := EncodeEAVKey(1, 2, codec.Str("a"))
	k2 := EncodeEAVKey(1, 2, codec.Str("b"))
	require.Less(t, string(k1), string(k2))

	require.Equal(t, uint64(1), DecodeEAVEntity(k1))
	require.Equal(t, uint64(2), DecodeEAVAttr(k1))
	v, err := DecodeEAVValue(k1)
	require.NoError(t, err)
	require.Equal(t, "a", v.AsString())
}

func TestVAEKeyRoundTrip(t *testing.T) {
	k := EncodeVAEKey(100, 7, 42)
	require.Equal(t, uint64(100), DecodeVAEValueRef(k))
	require.Equal(t, uint64(7), DecodeVAEAttr(k))
	require.Equal(t, uint64(42), DecodeVAEEntity(k))
}

func TestTxLogKeyRoundTrip(t *testing.T) {
	k := EncodeTxLogKey(5, 10, 20, codec.Int(99), true)
	require.Equal(t, uint64(5), DecodeTxLogTx(k))
	require.Equal(t, uint64(10), DecodeTxLogEntity(k))
	require.Equal(t, uint64(20), DecodeTxLogAttr(k))
	v, err := DecodeTxLogValue(k)
	require.NoError(t, err)
	require.Equal(t, int64(99), v.AsInt())
	require.True(t, DecodeTxLogOp(k))

	retraction := EncodeTxLogKey(5, 10, 20, codec.Int(99), false)
	require.False(t, DecodeTxLogOp(retraction))
}

func TestManagerInsertAndLookup(t *testing.T) {
	pager := newFakePager(512)
	m := Open(Roots{}, pager)

	d := Datom{Entity: 1, Attr: 2, Value: codec.Str("Alice"), Tx: 1, Op: true}
	m, err := m.InsertDatom(d, true /* indexed */, false)
	require.NoError(t, err)

	v, ok := m.LookupEntityAttr(1, 2)
	require.True(t, ok)
	require.Equal(t, "Alice", v.AsString())

	entity, found := m.ProbeAVE(2, codec.Str("Alice"))
	require.True(t, found)
	require.Equal(t, uint64(1), entity)

	m, err = m.DeleteDatom(d, true, false)
	require.NoError(t, err)
	_, ok = m.LookupEntityAttr(1, 2)
	require.False(t, ok)
	_, found = m.ProbeAVE(2, codec.Str("Alice"))
	require.False(t, found)
}

func TestManagerRefAttributePopulatesVAE(t *testing.T) {
	pager := newFakePager(512)
	m := Open(Roots{}, pager)

	d := Datom{Entity: 1, Attr: 9, Value: codec.Ref(55), Tx: 1, Op: true}
	m, err := m.InsertDatom(d, false, true /* ref */)
	require.NoError(t, err)

	it := m.VAE.SeekFirst()
	require.True(t, it.Valid())
	require.Equal(t, uint64(55), DecodeVAEValueRef(it.Key()))
	require.Equal(t, uint64(1), DecodeVAEEntity(it.Key()))
}
