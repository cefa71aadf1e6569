//go:build amd64 || arm64 || loong64 || ppc64 || ppc64le || riscv64 || s390x

package mmap

// MaxSize is the largest page-file size store.File.growTo will map on
// this architecture, bounding a runaway page count before it hits the
// platform's real mmap ceiling.
const MaxSize = 0xFFFFFFFFFFFF // 256TB
