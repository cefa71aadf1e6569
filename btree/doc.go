// Package btree implements the copy-on-write B+ tree of spec.md §4.4
// (C5): descent with path capture, COW propagation of splits and
// deletes, and stack-based iteration that never mutates a page after it
// is written.
//
// Grounded on other_examples/alexhholmes-fredb__btree.go and __tx.go for
// the COW descent-path bookkeeping shape (walk down recording the path,
// walk back up applying COW/SPLIT), adapted to spec.md §4.4's exact
// algorithm where fredb differs: the append-order 90/10 split heuristic,
// the strict-lower-bound branch routing tie-break, and — per spec.md §9's
// "strongly preferred" resolution — the removal of leaf sibling pointers
// in favor of a descent-path-carrying iterator (see iterator.go), so that
// every historical root's range scans stay correct and no page is ever
// mutated after it is written.
package btree
