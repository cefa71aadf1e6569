package btree

import (
	"fmt"

	"github.com/n1kben/zat/page"
)

// CompareFunc orders two encoded keys. Every index family in spec.md
// §4.6 uses plain bytewise comparison over big-endian composite keys, but
// the tree itself stays generic over the comparator, matching spec.md
// §4.4's "(root_page_id, file_manager_ref, key_compare_fn)" triple.
type CompareFunc func(a, b []byte) int

// Pager is the subset of store.File a Tree needs: page-granular I/O and
// allocation. Accepting an interface here (rather than importing store
// directly) keeps btree testable against an in-memory fake and keeps the
// import graph a DAG (store has no reason to know about btree).
type Pager interface {
	PageSize() int
	ReadPage(id uint64) []byte
	WritePage(id uint64, buf []byte) error
	AllocPage() uint64
}

// FreeTracker receives every page id a COW operation orphans. Installed
// only during writes (spec.md §4.4: "an optional pointer to a
// FreePageTracker active during writes").
type FreeTracker interface {
	Free(id uint64)
}

// Tree is a cheap-to-copy handle: (root page id, pager, comparator,
// index id). Two Trees sharing a pager but differing in Root are
// independent snapshots over the same file, per spec.md §4.4. Insert and
// Delete return a new Tree value with an updated Root rather than
// mutating the receiver, so a caller threads the root forward explicitly
// — `tree, err = tree.Insert(k, v)` — making the COW discipline visible
// at every call site instead of hidden behind a pointer mutation.
type Tree struct {
	Root    uint64
	IndexID uint8
	Pager   Pager
	Cmp     CompareFunc
	Free    FreeTracker // nil outside of a write transaction
}

// New constructs a Tree over an existing root (0 means empty).
func New(root uint64, indexID uint8, pager Pager, cmp CompareFunc) Tree {
	return Tree{Root: root, IndexID: indexID, Pager: pager, Cmp: cmp}
}

// WithFree returns a copy of t with the given FreeTracker installed,
// for use during the write path of one transaction.
func (t Tree) WithFree(f FreeTracker) Tree {
	t.Free = f
	return t
}

func (t Tree) free(id uint64) {
	if t.Free != nil {
		t.Free.Free(id)
	}
}

// Lookup descends from the root and binary-searches the leaf, per
// spec.md §4.4's read-operations contract. Reads are total: a missing
// key returns (nil, false), never an error.
func (t Tree) Lookup(key []byte) ([]byte, bool) {
	if t.Root == 0 {
		return nil, false
	}
	id := t.Root
	for {
		buf := t.Pager.ReadPage(id)
		switch page.PageType(buf) {
		case page.TypeLeaf:
			slot, ok := page.LeafFindKey(buf, key, t.Cmp)
			if !ok {
				return nil, false
			}
			_, val := page.LeafGetEntry(buf, slot)
			return val, true
		case page.TypeBranch:
			child, _ := page.BranchFindChild(buf, key, t.Cmp)
			id = child
		default:
			panic(fmt.Sprintf("btree: unexpected page type %v at page %d", page.PageType(buf), id))
		}
	}
}

// Stats is a cheap summary used by zat.IndexStats; it performs a full
// traversal (acceptable for diagnostics, not on any hot path).
type Stats struct {
	Leaves   int
	Branches int
	Entries  int
}

func (t Tree) Stats() Stats {
	var s Stats
	if t.Root == 0 {
		return s
	}
	var walk func(id uint64)
	walk = func(id uint64) {
		buf := t.Pager.ReadPage(id)
		switch page.PageType(buf) {
		case page.TypeLeaf:
			s.Leaves++
			s.Entries += page.LeafNumEntries(buf)
		case page.TypeBranch:
			s.Branches++
			n := page.BranchNumEntries(buf)
			for i := 0; i < n; i++ {
				_, child := page.BranchGetEntry(buf, i)
				walk(child)
			}
			walk(page.BranchRightChild(buf))
		}
	}
	walk(t.Root)
	return s
}
