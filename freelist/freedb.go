package freelist

import (
	"bytes"
	"encoding/binary"

	"github.com/n1kben/zat/btree"
	"github.com/n1kben/zat/page"
)

// FreeDB is the persistent free-page ledger of spec.md §4.5 (C6): a B+
// tree keyed by the tx id that freed a batch of pages, valued with the
// msgpack-encoded page-id list (freelist/encoding.go).
//
// A key is tx_id(8 bytes big-endian) ++ chunk(2 bytes big-endian): most
// transactions produce exactly one chunk (chunk 0), but a transaction
// whose orphan count exceeds MaxTrackedPages spills into several chunks
// under the same tx id, per spec.md §9's resolved Open Question. Keys
// stay tx-id-ordered regardless of chunk count since chunk is the key's
// least-significant field.
type FreeDB struct {
	Tree btree.Tree
}

// Open wraps an existing FreeDB root (0 for a brand new database).
func Open(root uint64, pager btree.Pager) FreeDB {
	return FreeDB{Tree: btree.New(root, page.IndexFreeDB, pager, bytes.Compare)}
}

func encodeKey(txID uint64, chunk int) []byte {
	buf := make([]byte, 10)
	binary.BigEndian.PutUint64(buf, txID)
	binary.BigEndian.PutUint16(buf[8:], uint16(chunk))
	return buf
}

func decodeKeyTxID(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[:8])
}

// Commit inserts one FreeDB entry per chunk of the tracker the
// transaction drained at commit time, under txID (spec.md §4.5's
// "encoded as one FreeDB value under key = new_tx_id"), starting at key
// chunk startChunk so a caller that commits more than one batch of
// chunks under the same txID (the transaction's own frees, then a
// reclaim pass's carry-forward frees) never reuses a chunk index and
// silently overwrites an earlier entry. It returns the next unused
// chunk index so a subsequent Commit call under the same txID can
// continue from there.
//
// Because an insert into FreeDB is itself a COW write, it can orphan
// FreeDB's own pages; those are captured by a fresh carry-forward
// Tracker, installed only for the duration of this call, and folded
// back in as more chunks under txID until a round produces nothing
// further — spec.md §9's self-referential resolution, which terminates
// because "every page lives at a single id for its lifetime and cannot
// be freed twice."
func (f FreeDB) Commit(txID uint64, startChunk int, chunks [][]uint64) (FreeDB, int, error) {
	tree := f.Tree
	chunkIdx := startChunk
	pending := chunks
	for len(pending) > 0 {
		carry := NewTracker()
		tree = tree.WithFree(carry)
		for _, ids := range pending {
			var err error
			tree, err = tree.Insert(encodeKey(txID, chunkIdx), encodePageIDs(ids))
			if err != nil {
				return f, chunkIdx, err
			}
			chunkIdx++
		}
		pending = carry.Drain()
	}
	return FreeDB{Tree: tree.WithFree(nil)}, chunkIdx, nil
}

// Reclaim implements spec.md §4.5's reclamation step: every entry whose
// tx id is <= oldestReader is no longer visible to any reader, so its
// page ids are popped for reuse and the entry is deleted. tracker is the
// caller's in-flight transaction Tracker — deleting a FreeDB entry is a
// COW write like any other, so the pages it orphans are reported there
// too (spec.md §9's Open Question #2: "the FreeDB delete on reclamation
// should also enter a carry-forward entry"), to be folded into this same
// transaction's own Commit chunks rather than lost.
func (f FreeDB) Reclaim(tracker *Tracker, oldestReader uint64) (FreeDB, []uint64, error) {
	tree := f.Tree
	var reclaimed []uint64
	var keys [][]byte

	it := tree.SeekFirst()
	for it.Valid() {
		if decodeKeyTxID(it.Key()) > oldestReader {
			break // FreeDB keys sort by tx id first; nothing further qualifies
		}
		ids, err := decodePageIDs(it.Value())
		if err != nil {
			return f, nil, err
		}
		reclaimed = append(reclaimed, ids...)
		keys = append(keys, append([]byte(nil), it.Key()...))
		it.Next()
	}
	if len(keys) == 0 {
		return f, nil, nil
	}

	tree = tree.WithFree(tracker)
	for _, k := range keys {
		var err error
		tree, err = tree.Delete(k)
		if err != nil {
			return f, nil, err
		}
	}
	return FreeDB{Tree: tree.WithFree(nil)}, reclaimed, nil
}
