package zat

import "github.com/n1kben/zat/btree"

// IndexStats summarizes one tree's page/entry counts, adapted from the
// teacher's monitoring.go TableStats (Rows/DataSize/DataAlloc) to the
// five fixed trees this database always has instead of one per
// user-defined table.
type IndexStats struct {
	Name     string
	Leaves   int
	Branches int
	Entries  int
}

// Stats reports per-index page/entry counts for every tree this
// generation holds, for diagnostics — a full traversal per tree, same
// caveat as btree.Tree.Stats: "acceptable for diagnostics, not on any
// hot path."
func (db *Database) Stats() []IndexStats {
	db.mu.Lock()
	mgr, fdb := db.mgr, db.fdb
	db.mu.Unlock()

	collect := func(name string, t btree.Tree) IndexStats {
		s := t.Stats()
		return IndexStats{Name: name, Leaves: s.Leaves, Branches: s.Branches, Entries: s.Entries}
	}
	return []IndexStats{
		collect("eav", mgr.EAV),
		collect("ave", mgr.AVE),
		collect("vae", mgr.VAE),
		collect("txlog", mgr.TxLog),
		collect("freedb", fdb.Tree),
	}
}
