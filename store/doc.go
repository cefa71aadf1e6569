// Package store implements the fixed-page file manager and dual
// meta-page commit protocol of spec.md §4.3/§4.4 (C3, C4): page 0 and 1
// are meta slots, pages 2+ hold tree data, all I/O is page-granular and
// big-endian, and commits hand off atomically between the two meta slots
// so a crash between writes never corrupts the previously committed
// state.
//
// Grounded on spec.md §4.3 exactly; the meta-slot selection/checksum flow
// is modeled on ranhaoliuLeo-bottle's bmeta/bpage packages (a from-scratch
// bolt-format reimplementation in the retrieved pack), adapted from their
// FNV64a checksum to the CRC-32 spec.md mandates for on-disk interop.
// Page I/O (mmap for reads, positioned pwrite for writes, explicit remap)
// is grounded on the teacher's own mmap package.
package store
