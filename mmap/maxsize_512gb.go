//go:build mips64 || mips64le

package mmap

// MaxSize is the largest page-file size store.File.growTo will map on
// this architecture, bounding a runaway page count before it hits the
// platform's real mmap ceiling.
const MaxSize = 0x8000000000 // 512GB
