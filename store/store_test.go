package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestFile(t *testing.T) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zat.db")
	f, err := Open(path, 4096)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestOpenFreshFile(t *testing.T) {
	f := openTestFile(t)
	require.True(t, f.Fresh())
	require.Equal(t, uint64(2), f.NextPage())
}

func TestAllocAndWritePage(t *testing.T) {
	f := openTestFile(t)
	id := f.AllocPage()
	require.Equal(t, uint64(2), id)

	buf := make([]byte, f.PageSize())
	buf[0] = 0xAB
	require.NoError(t, f.WritePage(id, buf))
	require.NoError(t, f.Remap())

	got := f.ReadPage(id)
	require.Equal(t, byte(0xAB), got[0])
}

func TestReuseListPreferred(t *testing.T) {
	f := openTestFile(t)
	f.PushReusable(5)
	require.Equal(t, uint64(5), f.AllocPage())
	require.Equal(t, uint64(2), f.AllocPage())
}

func TestMetaRoundTripAndChecksum(t *testing.T) {
	m := &Meta{
		Version: Version, PageSize: 4096, TxID: 7,
		EAVRoot: 10, AVERoot: 11, VAERoot: 12, TxLogRoot: 13, FreeRoot: 14,
		NextEntity: 100, NextPage: 20, DatomCount: 42,
	}
	buf := make([]byte, 4096)
	m.Encode(buf)

	got, err := DecodeMeta(buf)
	require.NoError(t, err)
	require.Equal(t, m, got)

	buf[50] ^= 0xFF
	_, err = DecodeMeta(buf)
	require.ErrorIs(t, err, ErrChecksum)
}

func TestActiveMetaPicksHighestValidTxID(t *testing.T) {
	f := openTestFile(t)
	m0 := &Meta{Version: Version, PageSize: 4096, TxID: 3}
	m1 := &Meta{Version: Version, PageSize: 4096, TxID: 5}
	require.NoError(t, f.WriteMeta(0, m0))
	require.NoError(t, f.WriteMeta(1, m1))
	require.NoError(t, f.Remap())

	active, writeSlot, err := f.ActiveMeta()
	require.NoError(t, err)
	require.Equal(t, uint64(5), active.TxID)
	require.Equal(t, 0, writeSlot)
}

func TestActiveMetaFallsBackOnCorruptSlot(t *testing.T) {
	f := openTestFile(t)
	m0 := &Meta{Version: Version, PageSize: 4096, TxID: 3}
	require.NoError(t, f.WriteMeta(0, m0))
	garbage := make([]byte, f.PageSize())
	require.NoError(t, f.WritePage(1, garbage))
	require.NoError(t, f.Remap())

	active, writeSlot, err := f.ActiveMeta()
	require.NoError(t, err)
	require.Equal(t, uint64(3), active.TxID)
	require.Equal(t, 1, writeSlot)
}

func TestActiveMetaFailsWhenBothCorrupt(t *testing.T) {
	f := openTestFile(t)
	garbage := make([]byte, f.PageSize())
	require.NoError(t, f.WritePage(0, garbage))
	require.NoError(t, f.WritePage(1, garbage))
	require.NoError(t, f.Remap())

	_, _, err := f.ActiveMeta()
	require.Error(t, err)
}
