// Package mmap wraps the platform mmap/madvise/msync syscalls ZatDB's
// store.File needs to map its page file into memory. It exists because
// Go's standard library has no mmap support at all, not even on Unix.
//
// store.File only ever maps read-only: every page write goes through a
// positioned pwrite in store.File.WritePage, never through the mapping
// itself, so a stale or in-progress mmap view can never observe a torn
// write. There is accordingly no writable-mapping option here — dropping
// it removes a capability nothing in this module exercises, and one that
// would undermine that invariant if it were ever used by accident.
package mmap

import "os"

// AccessPattern hints to the kernel how the mapped region will be read,
// translated to madvise(2) on Unix. The two hints describe mutually
// exclusive access patterns, which is why this is a plain enum rather
// than an OS-mmap-wrapper-style flag bitmask.
type AccessPattern int

const (
	// RandomAccess hints that read-ahead is unlikely to help, matching
	// store.File's actual access pattern: page reads follow B+ tree
	// pointers, not file offset order. Maps to MADV_RANDOM on Unix.
	RandomAccess AccessPattern = iota

	// SequentialAccess hints at aggressive read-ahead. Maps to
	// MADV_SEQUENTIAL on Unix. Unused by store.File today; kept for a
	// future bulk-scan / compaction pass that reads a page file start to
	// finish.
	SequentialAccess
)

// Map memory-maps the first size bytes of f read-only.
func Map(f *os.File, size int, pattern AccessPattern) ([]byte, error) {
	return mmap(f, size, pattern)
}

// Unmap unmaps a slice previously returned by Map.
func Unmap(b []byte) error {
	return munmap(b)
}
