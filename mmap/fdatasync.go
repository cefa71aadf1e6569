package mmap

import "os"

// Fdatasync flushes f's data (and mapping, if given) to stable storage
// using the fastest durable-sync primitive the platform offers, skipping
// metadata (mtime/atime) syncs plain fsync also pays for.
//
// store.File.Sync calls this after every meta-page write; a failure here
// means the write-ahead guarantee the dual-meta-slot commit protocol
// depends on cannot be trusted, so the caller must treat the database as
// corrupt rather than retry.
func Fdatasync(f *os.File, mapping []byte) error {
	return fdatasync(f, mapping)
}
