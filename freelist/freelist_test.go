package freelist

import (
	"fmt"
	"testing"

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

func TestTrackerSpillsAtCapacity(t *testing.T) {
	tr := &Tracker{max: 4}
	for i := uint64(0); i < 10; i++ {
		tr.Free(i)
	}
	chunks := tr.Drain()
	require.Len(t, chunks, 3) // 4, 4, 2
	require.Equal(t, 4, len(chunks[0]))
	require.Equal(t, 4, len(chunks[1]))
	require.Equal(t, 2, len(chunks[2]))
	require.True(t, tr.Empty())
}

func TestFreeDBCommitAndReclaim(t *testing.T) {
	pager := newFakePager(256)
	fdb := Open(0, pager)

	fdb, _, err := fdb.Commit(1, 0, [][]uint64{{100, 101, 102}})
	require.NoError(t, err)
	fdb, _, err = fdb.Commit(2, 0, [][]uint64{{200}})
	require.NoError(t, err)
	fdb, _, err = fdb.Commit(3, 0, [][]uint64{{300, 301}})
	require.NoError(t, err)

	tracker := NewTracker()
	fdb, reclaimed, err := fdb.Reclaim(tracker, 2)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{100, 101, 102, 200}, reclaimed)

	// Entries for tx 1 and 2 are gone; tx 3 remains (not yet visible-free).
	it := fdb.Tree.SeekFirst()
	require.True(t, it.Valid())
	require.Equal(t, uint64(3), decodeKeyTxID(it.Key()))
	it.Next()
	require.False(t, it.Valid())
}

// A transaction's own Commit call and a later reclaim pass's Commit call
// both land under the same tx id: the second call must continue chunk
// numbering from where the first left off, or it silently overwrites the
// first call's entries and leaks their page ids.
func TestFreeDBCommitUnderSameTxIDDoesNotOverwrite(t *testing.T) {
	pager := newFakePager(256)
	fdb := Open(0, pager)

	fdb, next, err := fdb.Commit(5, 0, [][]uint64{{10, 11}})
	require.NoError(t, err)
	require.Equal(t, 1, next)

	fdb, _, err = fdb.Commit(5, next, [][]uint64{{20, 21, 22}})
	require.NoError(t, err)

	tracker := NewTracker()
	_, reclaimed, err := fdb.Reclaim(tracker, 5)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{10, 11, 20, 21, 22}, reclaimed)
}

func TestFreeDBCommitWithMultipleChunks(t *testing.T) {
	pager := newFakePager(256)
	fdb := Open(0, pager)

	fdb, _, err := fdb.Commit(1, 0, [][]uint64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	tracker := NewTracker()
	_, reclaimed, err := fdb.Reclaim(tracker, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{1, 2, 3, 4, 5, 6}, reclaimed)
}
