//go:build unix

package mmap

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func mmap(f *os.File, size int, pattern AccessPattern) ([]byte, error) {
	b, err := unix.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	advice := syscall.MADV_RANDOM
	if pattern == SequentialAccess {
		advice = syscall.MADV_SEQUENTIAL
	}
	if err := unix.Madvise(b, advice); err != nil && err != syscall.ENOSYS {
		// A kernel that doesn't implement madvise still maps fine; the
		// hint is advisory either way.
		return nil, fmt.Errorf("mmap: madvise: %w", err)
	}

	return b, nil
}

func munmap(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("mmap: munmap: %w", err)
	}
	return nil
}
