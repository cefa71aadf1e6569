package page

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPageSize = 256

func cmp(a, b []byte) int { return bytes.Compare(a, b) }

func TestLeafInsertFindDelete(t *testing.T) {
	buf := make([]byte, testPageSize)
	InitLeaf(buf, 1)

	keys := [][]byte{[]byte("b"), []byte("d"), []byte("a"), []byte("c")}
	for _, k := range keys {
		i := LeafSearchPoint(buf, k, cmp)
		require.True(t, LeafInsertEntry(buf, i, k, append([]byte("v-"), k...)))
	}
	require.Equal(t, 4, LeafNumEntries(buf))

	for i := 0; i < LeafNumEntries(buf)-1; i++ {
		require.True(t, cmp(LeafKeyAt(buf, i), LeafKeyAt(buf, i+1)) < 0)
	}

	slot, ok := LeafFindKey(buf, []byte("c"), cmp)
	require.True(t, ok)
	_, val := LeafGetEntry(buf, slot)
	require.Equal(t, []byte("v-c"), val)

	_, ok = LeafFindKey(buf, []byte("z"), cmp)
	require.False(t, ok)

	LeafDeleteEntry(buf, slot)
	require.Equal(t, 3, LeafNumEntries(buf))
	_, ok = LeafFindKey(buf, []byte("c"), cmp)
	require.False(t, ok)
}

func TestLeafInsertFailsWhenFull(t *testing.T) {
	buf := make([]byte, 64)
	InitLeaf(buf, 1)
	inserted := 0
	for i := 0; i < 100; i++ {
		k := []byte{byte(i)}
		if !LeafInsertEntry(buf, LeafNumEntries(buf), k, []byte("xxxxxx")) {
			break
		}
		inserted++
	}
	require.Greater(t, inserted, 0)
	require.Less(t, inserted, 100)
}

func TestLeafSplitBalanced(t *testing.T) {
	buf := make([]byte, testPageSize)
	right := make([]byte, testPageSize)
	InitLeaf(buf, 2)
	for i := byte(0); i < 10; i++ {
		LeafInsertEntry(buf, int(i), []byte{i}, []byte{i, i})
	}
	sep := LeafSplit(buf, right, 5)
	require.Equal(t, []byte{5}, sep)
	require.Equal(t, 5, LeafNumEntries(buf))
	require.Equal(t, 5, LeafNumEntries(right))
	require.Equal(t, []byte{4}, LeafKeyAt(buf, 4))
	require.Equal(t, []byte{5}, LeafKeyAt(right, 0))
}

func TestLeafSplitAppendOrder(t *testing.T) {
	buf := make([]byte, testPageSize)
	right := make([]byte, testPageSize)
	InitLeaf(buf, 2)
	for i := byte(0); i < 9; i++ {
		LeafInsertEntry(buf, int(i), []byte{i}, []byte{i})
	}
	// 90/10: right starts with just the new entry, so split at n (all
	// existing entries stay left) before the caller inserts the new key.
	n := LeafNumEntries(buf)
	sep := LeafSplit(buf, right, n)
	require.Equal(t, 9, LeafNumEntries(buf))
	require.Equal(t, 0, LeafNumEntries(right))
	_ = sep
}

func TestBranchInsertFindSplit(t *testing.T) {
	buf := make([]byte, testPageSize)
	InitBranch(buf, 1, 999)

	BranchInsertEntry(buf, 0, []byte("m"), 10)
	BranchInsertEntry(buf, 1, []byte("t"), 20)

	child, slot := BranchFindChild(buf, []byte("a"), cmp)
	require.Equal(t, uint64(10), child)
	require.Equal(t, 0, slot)

	child, slot = BranchFindChild(buf, []byte("m"), cmp)
	require.Equal(t, uint64(20), child)
	require.Equal(t, 1, slot)

	child, slot = BranchFindChild(buf, []byte("z"), cmp)
	require.Equal(t, uint64(999), child)
	require.Equal(t, 2, slot)

	right := make([]byte, testPageSize)
	for i := byte(0); i < 6; i++ {
		k := []byte{'a' + i}
		BranchInsertEntry(buf, BranchNumEntries(buf), k, uint64(i))
	}
	n := BranchNumEntries(buf)
	sepKey, _ := BranchSplit(buf, right, n/2)
	require.NotEmpty(t, sepKey)
	require.Less(t, BranchNumEntries(buf), n)
}

func TestOverflowRoundTrip(t *testing.T) {
	buf := make([]byte, testPageSize)
	data := []byte("hello overflow world")
	InitOverflow(buf, data, 42)
	require.Equal(t, uint64(42), OverflowNext(buf))
	require.Equal(t, data, OverflowPayload(buf))
}

func TestInitFree(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xFF
	}
	InitFree(buf)
	require.Equal(t, TypeFree, PageType(buf))
}
