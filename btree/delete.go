package btree

import "github.com/n1kben/zat/page"

// Delete implements spec.md §4.4's delete(key): descend capturing the
// path, COW-copy the leaf without the entry if present, and propagate a
// plain pointer replacement upward. There is no merge-on-underflow —
// spec.md's Non-goals explicitly tolerate sparse pages — so a branch
// never needs to split or shrink here; propagation is always a COW, never
// a split.
func (t Tree) Delete(key []byte) (Tree, error) {
	if t.Root == 0 {
		return t, nil
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

	leafBuf := t.Pager.ReadPage(leafID)
	slot, ok := page.LeafFindKey(leafBuf, key, t.Cmp)
	if !ok {
		return t, nil // absent: root unchanged, per spec.md §4.4
	}

	scratch := t.scratchPage()
	copy(scratch, leafBuf)
	page.LeafDeleteEntry(scratch, slot)
	newLeafID := t.Pager.AllocPage()
	if err := t.Pager.WritePage(newLeafID, scratch); err != nil {
		return t, err
	}
	t.free(leafID)

	prop := propagation{newID: newLeafID}
	for i := len(path) - 1; i >= 0; i-- {
		var err error
		prop, err = t.cowBranchApply(path[i], prop)
		if err != nil {
			return t, err
		}
	}

	out := t
	out.Root = prop.newID
	return out, nil
}
