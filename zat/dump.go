package zat

import (
	"fmt"
	"strings"

	"github.com/n1kben/zat/index"
	"github.com/n1kben/zat/schema"
)

// DumpFlags selects which sections Dump writes, adapted from the
// teacher's debug.go bitmask (DumpTableHeaders/DumpRows/DumpStats/
// DumpIndices/DumpIndexRows), narrowed to this database's fixed set of
// sections instead of one per user table.
type DumpFlags uint64

const (
	DumpSchema = DumpFlags(1 << iota)
	DumpDatoms
	DumpIndexStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

func (f DumpFlags) contains(v DumpFlags) bool { return f&v == v }

var dumpSep = strings.Repeat("-", 60)

// Dump renders a human-readable snapshot of the current generation —
// schema attributes, every live datom, and per-index page stats — for
// debugging, same role as the teacher's Tx.Dump over bbolt buckets.
func (db *Database) Dump(f DumpFlags) string {
	db.mu.Lock()
	mgr := db.mgr
	db.mu.Unlock()

	var w strings.Builder
	if f.contains(DumpSchema) {
		db.dumpSchema(&w)
	}
	if f.contains(DumpDatoms) {
		db.dumpDatoms(&w, mgr)
	}
	if f.contains(DumpIndexStats) {
		db.dumpStats(&w)
	}
	return w.String()
}

func (db *Database) dumpSchema(w *strings.Builder) {
	fmt.Fprintln(w, dumpSep)
	fmt.Fprintln(w, "schema")
	fmt.Fprintln(w, dumpSep)
	for _, ident := range db.schemaIdents() {
		fmt.Fprintf(w, "  :%s\n", ident)
	}
}

// schemaIdents walks the EAV index's schema partition directly rather
// than exposing Cache internals, since Cache keeps its ident table
// unexported.
func (db *Database) schemaIdents() []string {
	db.mu.Lock()
	mgr := db.mgr
	db.mu.Unlock()

	var idents []string
	it := mgr.EAV.SeekFirst()
	for it.Valid() {
		if schema.Partition(index.DecodeEAVEntity(it.Key())) != schema.PartitionSchema {
			break
		}
		attr := index.DecodeEAVAttr(it.Key())
		if attr == 1 { // :db/ident, see schema.AttrIdent
			if v, err := index.DecodeEAVValue(it.Key()); err == nil {
				idents = append(idents, v.AsString())
			}
		}
		it.Next()
	}
	return idents
}

func (db *Database) dumpDatoms(w *strings.Builder, mgr index.Manager) {
	fmt.Fprintln(w, dumpSep)
	fmt.Fprintln(w, "datoms (EAV order)")
	fmt.Fprintln(w, dumpSep)
	it := mgr.EAV.SeekFirst()
	for it.Valid() {
		e := index.DecodeEAVEntity(it.Key())
		a := index.DecodeEAVAttr(it.Key())
		v, err := index.DecodeEAVValue(it.Key())
		if err != nil {
			fmt.Fprintf(w, "  [%d %d] ** decode error: %v\n", e, a, err)
		} else {
			fmt.Fprintf(w, "  [%d %d %s]\n", e, a, v.String())
		}
		it.Next()
	}
}

func (db *Database) dumpStats(w *strings.Builder) {
	fmt.Fprintln(w, dumpSep)
	fmt.Fprintln(w, "index stats")
	fmt.Fprintln(w, dumpSep)
	for _, s := range db.Stats() {
		fmt.Fprintf(w, "  %-8s leaves=%d branches=%d entries=%d\n", s.Name, s.Leaves, s.Branches, s.Entries)
	}
}
