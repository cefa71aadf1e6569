package btree

import (
	"fmt"

	"github.com/n1kben/zat/page"
)

// propagation is what a COW write at one tree level hands up to its
// parent: either a single replacement page id, or a split that must be
// installed as two child pointers either side of a promoted separator.
type propagation struct {
	split  bool
	newID  uint64 // valid when !split
	sepKey []byte // valid when split
	leftID uint64 // valid when split
	rightID uint64 // valid when split
}

// descentFrame records one branch level visited on the way down, per
// spec.md §4.4 step 2: "at each branch recording (branch_page_id,
// slot_index_followed, went_right_child)".
type descentFrame struct {
	pageID uint64
	slot   int // index of the entry followed, or BranchNumEntries(buf) if wentRight
	n      int // BranchNumEntries(buf) at descent time, for re-deriving wentRight
}

func (f descentFrame) wentRight() bool { return f.slot == f.n }

func (t Tree) scratchPage() []byte {
	return make([]byte, t.Pager.PageSize())
}

// Insert implements spec.md §4.4's insert(key, value): descend capturing
// the path, COW the touched leaf (splitting on overflow), then walk the
// path back up applying COW or split propagation at each branch. On
// failure the receiver is returned unchanged, per the "failures must
// leave the in-memory tree's root field unmodified" contract.
func (t Tree) Insert(key, val []byte) (Tree, error) {
	if t.Root == 0 {
		buf := t.scratchPage()
		page.InitLeaf(buf, t.IndexID)
		if !page.LeafInsertEntry(buf, 0, key, val) {
			return t, fmt.Errorf("btree: entry too large for an empty page")
		}
		id := t.Pager.AllocPage()
		if err := t.Pager.WritePage(id, buf); err != nil {
			return t, err
		}
		out := t
		out.Root = id
		return out, nil
	}

	var path []descentFrame
	id := t.Root
	for {
		buf := t.Pager.ReadPage(id)
		if page.PageType(buf) == page.TypeLeaf {
			break
		}
		child, slot := page.BranchFindChild(buf, key, t.Cmp)
		path = append(path, descentFrame{pageID: id, slot: slot, n: page.BranchNumEntries(buf)})
		id = child
	}
	leafID := id

	prop, err := t.cowLeafInsert(leafID, key, val)
	if err != nil {
		return t, err
	}

	for i := len(path) - 1; i >= 0; i-- {
		prop, err = t.cowBranchApply(path[i], prop)
		if err != nil {
			return t, err
		}
	}

	out := t
	if prop.split {
		buf := out.scratchPage()
		page.InitBranch(buf, out.IndexID, prop.rightID)
		page.BranchInsertEntry(buf, 0, prop.sepKey, prop.leftID)
		id := t.Pager.AllocPage()
		if err := t.Pager.WritePage(id, buf); err != nil {
			return t, err
		}
		out.Root = id
	} else {
		out.Root = prop.newID
	}
	return out, nil
}

// cowLeafInsert copies leafID into a scratch buffer, applies the
// update-or-insert, and writes one or two new leaf pages.
func (t Tree) cowLeafInsert(leafID uint64, key, val []byte) (propagation, error) {
	scratch := t.scratchPage()
	copy(scratch, t.Pager.ReadPage(leafID))

	if slot, ok := page.LeafFindKey(scratch, key, t.Cmp); ok {
		page.LeafDeleteEntry(scratch, slot)
	}
	insertSlot := page.LeafSearchPoint(scratch, key, t.Cmp)

	if page.LeafInsertEntry(scratch, insertSlot, key, val) {
		newID := t.Pager.AllocPage()
		if err := t.Pager.WritePage(newID, scratch); err != nil {
			return propagation{}, err
		}
		t.free(leafID)
		return propagation{newID: newID}, nil
	}

	n := page.LeafNumEntries(scratch)
	splitAt := n / 2
	if insertSlot == n {
		// Append-order optimization (spec.md §4.2): the new key sorts
		// after everything already on the page, so keep the old entries
		// together on the left and let the right page hold only the
		// new entry, preserving ~90% fill under monotonic keys.
		splitAt = n
	}

	left := t.scratchPage()
	right := t.scratchPage()
	copy(left, scratch)
	sep := page.LeafSplit(left, right, splitAt)
	if sep == nil {
		// Append-order split: the new key alone starts the right page.
		sep = key
	}

	var ok bool
	if t.Cmp(key, sep) < 0 {
		i := page.LeafSearchPoint(left, key, t.Cmp)
		ok = page.LeafInsertEntry(left, i, key, val)
	} else {
		i := page.LeafSearchPoint(right, key, t.Cmp)
		ok = page.LeafInsertEntry(right, i, key, val)
	}
	if !ok {
		return propagation{}, fmt.Errorf("btree: entry too large to fit even after a leaf split")
	}

	leftID := t.Pager.AllocPage()
	rightID := t.Pager.AllocPage()
	if err := t.Pager.WritePage(leftID, left); err != nil {
		return propagation{}, err
	}
	if err := t.Pager.WritePage(rightID, right); err != nil {
		return propagation{}, err
	}
	t.free(leafID)
	return propagation{split: true, sepKey: sep, leftID: leftID, rightID: rightID}, nil
}

// cowBranchApply copies the branch at frame.pageID and installs the
// child-level propagation: a plain pointer replacement for a COW, or a
// promoted-separator insertion (splitting this branch in turn if it
// overflows) for a split. This is the standard B+ tree parent fix-up:
// the branch's old pointer to the touched child ends up holding the
// split's right half, and a new entry for the left half is inserted
// immediately before it (or, if the touched child was right_child,
// appended at the end with right_child updated to the right half).
func (t Tree) cowBranchApply(frame descentFrame, child propagation) (propagation, error) {
	scratch := t.scratchPage()
	copy(scratch, t.Pager.ReadPage(frame.pageID))

	if !child.split {
		if frame.wentRight() {
			page.SetBranchRightChild(scratch, child.newID)
		} else {
			page.SetBranchChild(scratch, frame.slot, child.newID)
		}
		newID := t.Pager.AllocPage()
		if err := t.Pager.WritePage(newID, scratch); err != nil {
			return propagation{}, err
		}
		t.free(frame.pageID)
		return propagation{newID: newID}, nil
	}

	if tryInsertPromotion(scratch, frame, child) {
		newID := t.Pager.AllocPage()
		if err := t.Pager.WritePage(newID, scratch); err != nil {
			return propagation{}, err
		}
		t.free(frame.pageID)
		return propagation{newID: newID}, nil
	}

	// The branch itself is full: split it, then install child's
	// promotion wherever the descended-into entry landed.
	n := page.BranchNumEntries(scratch)
	splitAt := n / 2

	left := t.scratchPage()
	right := t.scratchPage()
	copy(left, scratch)
	sepKey, _ := page.BranchSplit(left, right, splitAt)

	// The entry at exactly splitAt was promoted out of both halves: its
	// child became left's new right_child. If that's the entry we
	// descended into, child's promotion applies to left's right_child
	// slot directly rather than to any numbered entry.
	var ok bool
	switch {
	case frame.wentRight():
		ok = appendPromotion(right, child)
	case frame.slot < splitAt:
		ok = insertPromotionAt(left, frame.slot, child)
	case frame.slot == splitAt:
		ok = appendPromotion(left, child)
	default:
		ok = insertPromotionAt(right, frame.slot-(splitAt+1), child)
	}
	if !ok {
		return propagation{}, fmt.Errorf("btree: branch page too small to hold a promoted separator immediately after a split")
	}

	leftID := t.Pager.AllocPage()
	rightID := t.Pager.AllocPage()
	if err := t.Pager.WritePage(leftID, left); err != nil {
		return propagation{}, err
	}
	if err := t.Pager.WritePage(rightID, right); err != nil {
		return propagation{}, err
	}
	t.free(frame.pageID)
	return propagation{split: true, sepKey: sepKey, leftID: leftID, rightID: rightID}, nil
}

// tryInsertPromotion attempts to install a child split into buf at
// frame's descent point, per the standard B+ tree parent fix-up: a new
// entry for the split's left half goes in at the old position, and the
// entry that held the old (now-split) child keeps its key but is
// redirected to the right half — or, if the old child was right_child,
// the new entry is appended and right_child itself is redirected.
func tryInsertPromotion(buf []byte, frame descentFrame, child propagation) bool {
	if frame.wentRight() {
		return appendPromotion(buf, child)
	}
	return insertPromotionAt(buf, frame.slot, child)
}

func appendPromotion(buf []byte, child propagation) bool {
	if !page.BranchInsertEntry(buf, page.BranchNumEntries(buf), child.sepKey, child.leftID) {
		return false
	}
	page.SetBranchRightChild(buf, child.rightID)
	return true
}

func insertPromotionAt(buf []byte, i int, child propagation) bool {
	if !page.BranchInsertEntry(buf, i, child.sepKey, child.leftID) {
		return false
	}
	page.SetBranchChild(buf, i+1, child.rightID)
	return true
}
