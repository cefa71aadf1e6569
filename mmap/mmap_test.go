package mmap

import (
	"os"
	"testing"
)

func TestMapAndUnmap(t *testing.T) {
	f := must(os.CreateTemp("", "mmap_test_*"))
	defer os.Remove(f.Name())
	defer f.Close()

	const size = 4096
	if err := f.Truncate(size); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	b, err := Map(f, size, RandomAccess)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(b) != size {
		t.Fatalf("len(mapping) = %d, wanted %d", len(b), size)
	}
	if err := Fdatasync(f, b); err != nil {
		t.Fatalf("Fdatasync: %v", err)
	}
	if err := Unmap(b); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
}

func TestMapSequentialAccess(t *testing.T) {
	f := must(os.CreateTemp("", "mmap_test_*"))
	defer os.Remove(f.Name())
	defer f.Close()

	const size = 4096
	if err := f.Truncate(size); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	b, err := Map(f, size, SequentialAccess)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer Unmap(b)
	if len(b) != size {
		t.Fatalf("len(mapping) = %d, wanted %d", len(b), size)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
