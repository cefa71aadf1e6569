package zat

import "sync/atomic"

// DefaultMaxReaders is spec.md §5's "N concurrent read snapshots
// (bounded by MAX_READERS, default 126)".
const DefaultMaxReaders = 126

// readerTable is the fixed-size slot array of spec.md §5: each active
// Snapshot occupies one slot recording the tx id it was opened at, so
// the writer can compute the oldest tx any reader still depends on
// before asking freelist.FreeDB to reclaim pages. A slot holds txID+1
// so the zero value distinguishes "unused" from "reading tx 0".
type readerTable struct {
	slots []atomic.Uint64
}

func newReaderTable(n int) *readerTable {
	return &readerTable{slots: make([]atomic.Uint64, n)}
}

func (rt *readerTable) acquire(txID uint64) (slot int, ok bool) {
	for i := range rt.slots {
		if rt.slots[i].CompareAndSwap(0, txID+1) {
			return i, true
		}
	}
	return -1, false
}

func (rt *readerTable) release(slot int) {
	rt.slots[slot].Store(0)
}

// oldestActive reports the lowest tx id any open reader still observes,
// or current if no reader is active — spec.md §4.5's reclamation input.
func (rt *readerTable) oldestActive(current uint64) uint64 {
	oldest := current
	for i := range rt.slots {
		v := rt.slots[i].Load()
		if v == 0 {
			continue
		}
		if txID := v - 1; txID < oldest {
			oldest = txID
		}
	}
	return oldest
}
