// Package page implements the slotted page layout of spec.md §4.2 (C2):
// a small fixed header followed by a slot-offset array that grows upward
// from the header, with entry bodies growing downward from the end of the
// page. All operations here are allocator-free — they mutate a single
// caller-provided page buffer and never touch the file or the tree.
//
// Layout style (header first, slot array up, bodies down, gap in the
// middle) is grounded on other_examples/alexhholmes-fredb__page.go's
// page-diagram convention, adapted from fredb's forward-only consecutive
// body layout to spec.md's slot-array-plus-gap layout, which fredb does
// not implement but spec.md §4.2 requires exactly (including the header
// byte offsets fixed by spec.md §6).
package page
