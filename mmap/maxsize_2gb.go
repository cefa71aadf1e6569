//go:build 386 || arm || ppc

package mmap

// MaxSize is the largest page-file size store.File.growTo will map on
// this architecture, bounding a runaway page count before it hits the
// platform's real mmap ceiling.
const MaxSize = 0x7FFFFFFF // 2GB
