package btree

import "github.com/n1kben/zat/page"

// branchFrame is one ancestor on the iterator's descent path: the branch
// page and the index of the child currently being visited (n means
// right_child, for a branch with n separator entries).
type branchFrame struct {
	pageID uint64
	idx    int
}

// Iterator walks a Tree's leaves in key order without consulting any
// sibling pointer: it carries the full descent path instead, and
// re-ascends it at leaf boundaries. This is the stack-based resolution
// spec.md §9 "strongly preferred" for leaf sibling pointers — every
// historical root's range scan stays correct because no page the
// iterator reads is ever mutated after it was written.
//
// Key()/Value() read the entry the iterator currently sits on. Next and
// Prev move the position and report whether the new position holds an
// entry. Per spec.md §4.4, Prev does not consult whatever state Next left
// behind when it ran out of entries — it can always retreat from the
// last valid position, enabling reverse iteration after forward
// exhaustion.
type Iterator struct {
	tree   Tree
	stack  []branchFrame
	leaf   []byte
	slot   int
	valid  bool
	end    []byte
	hasEnd bool
}

func (it *Iterator) descendLeftmost(id uint64) {
	for {
		buf := it.tree.Pager.ReadPage(id)
		if page.PageType(buf) == page.TypeLeaf {
			it.leaf = buf
			it.slot = 0
			return
		}
		it.stack = append(it.stack, branchFrame{pageID: id, idx: 0})
		_, id = page.BranchGetEntry(buf, 0)
	}
}

func (it *Iterator) descendRightmost(id uint64) {
	for {
		buf := it.tree.Pager.ReadPage(id)
		if page.PageType(buf) == page.TypeLeaf {
			it.leaf = buf
			n := page.LeafNumEntries(buf)
			it.slot = n - 1
			return
		}
		n := page.BranchNumEntries(buf)
		it.stack = append(it.stack, branchFrame{pageID: id, idx: n})
		id = page.BranchRightChild(buf)
	}
}

// Seek positions the iterator at the lower-bound slot for key (spec.md
// §4.4's seek). If key sorts past every entry of the located leaf, the
// iterator transparently advances to the next leaf via the descent stack
// rather than chasing a next_leaf pointer.
func (t Tree) Seek(key []byte) *Iterator {
	it := &Iterator{tree: t}
	if t.Root == 0 {
		return it
	}
	id := t.Root
	for {
		buf := t.Pager.ReadPage(id)
		if page.PageType(buf) == page.TypeLeaf {
			it.leaf = buf
			it.slot = page.LeafSearchPoint(buf, key, t.Cmp)
			break
		}
		child, slot := page.BranchFindChild(buf, key, t.Cmp)
		it.stack = append(it.stack, branchFrame{pageID: id, idx: slot})
		id = child
	}
	if it.slot >= page.LeafNumEntries(it.leaf) {
		it.valid = it.advanceToNextLeaf()
		return it
	}
	it.valid = true
	return it
}

// SeekFirst positions the iterator at the smallest key in the tree.
func (t Tree) SeekFirst() *Iterator {
	it := &Iterator{tree: t}
	if t.Root == 0 {
		return it
	}
	it.descendLeftmost(t.Root)
	it.valid = page.LeafNumEntries(it.leaf) > 0 || it.advanceToNextLeaf()
	return it
}

// SeekLast positions the iterator at the largest key in the tree.
func (t Tree) SeekLast() *Iterator {
	it := &Iterator{tree: t}
	if t.Root == 0 {
		return it
	}
	it.descendRightmost(t.Root)
	it.valid = page.LeafNumEntries(it.leaf) > 0 || it.retreatToPrevLeaf()
	return it
}

// Range returns an iterator over the half-open interval [start, end).
func (t Tree) Range(start, end []byte) *Iterator {
	it := t.Seek(start)
	it.end = end
	it.hasEnd = true
	it.checkEnd()
	return it
}

func (it *Iterator) checkEnd() bool {
	if it.valid && it.hasEnd && it.tree.Cmp(it.Key(), it.end) >= 0 {
		it.valid = false
	}
	return it.valid
}

// Valid reports whether Key/Value currently identify a real entry.
func (it *Iterator) Valid() bool { return it.valid }

func (it *Iterator) Key() []byte {
	return page.LeafKeyAt(it.leaf, it.slot)
}

func (it *Iterator) Value() []byte {
	_, v := page.LeafGetEntry(it.leaf, it.slot)
	return v
}

// Next advances to the next entry in ascending key order.
func (it *Iterator) Next() bool {
	if it.leaf == nil {
		return false
	}
	it.slot++
	if it.slot < page.LeafNumEntries(it.leaf) {
		it.valid = true
		return it.checkEnd()
	}
	it.valid = it.advanceToNextLeaf()
	return it.checkEnd()
}

// Prev moves to the previous entry in ascending key order, regardless of
// whatever Next last reported — see the type doc comment.
func (it *Iterator) Prev() bool {
	if it.leaf == nil {
		return false
	}
	it.slot--
	if it.slot >= 0 {
		it.valid = true
		return true
	}
	it.valid = it.retreatToPrevLeaf()
	return it.valid
}

func (it *Iterator) advanceToNextLeaf() bool {
	saved := append([]branchFrame(nil), it.stack...)
	leaf := it.leaf
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		buf := it.tree.Pager.ReadPage(top.pageID)
		n := page.BranchNumEntries(buf)
		if top.idx >= n {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		top.idx++
		var child uint64
		if top.idx == n {
			child = page.BranchRightChild(buf)
		} else {
			_, child = page.BranchGetEntry(buf, top.idx)
		}
		it.descendLeftmost(child)
		if page.LeafNumEntries(it.leaf) > 0 {
			return true
		}
	}
	// No later leaf: stay just past the last entry so Prev can retreat.
	it.stack, it.leaf, it.slot = saved, leaf, page.LeafNumEntries(leaf)
	return false
}

func (it *Iterator) retreatToPrevLeaf() bool {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.idx <= 0 {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		top.idx--
		buf := it.tree.Pager.ReadPage(top.pageID)
		n := page.BranchNumEntries(buf)
		var child uint64
		if top.idx == n {
			child = page.BranchRightChild(buf)
		} else {
			_, child = page.BranchGetEntry(buf, top.idx)
		}
		it.descendRightmost(child)
		if page.LeafNumEntries(it.leaf) > 0 {
			it.slot = page.LeafNumEntries(it.leaf) - 1
			return true
		}
	}
	return false
}
