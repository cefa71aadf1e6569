// Package freelist implements spec.md §4.5 (C6): the in-memory
// FreePageTracker and the persistent FreeDB ledger that together let a
// transaction reuse pages orphaned by earlier, no-longer-visible
// transactions instead of growing the file forever.
package freelist
