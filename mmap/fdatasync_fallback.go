//go:build windows || (unix && !plan9 && !linux && !openbsd)

package mmap

import "os"

// No Fdatasync-equivalent exists on this platform; fall back to a full
// fsync.
func fdatasync(f *os.File, _ []byte) error {
	return f.Sync()
}
