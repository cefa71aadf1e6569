package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/n1kben/zat/mmap"
)

// File is the fixed-page file manager of spec.md §4.3 (C3): it owns the
// OS file handle, the current mmap read view, and monotonic/reuse page
// allocation. Reads come from the mmap view; writes go through positioned
// pwrite calls and are not visible through the mmap until Remap.
//
// Exclusivity: AllocPage, WritePage, Sync, and Remap are only ever called
// by the single writer (spec.md §5); ReadPage is safe for concurrent
// readers against a stable mmap view.
type File struct {
	f        *os.File
	mu       sync.Mutex // guards mmap swap during Remap
	data     []byte
	pageSize int
	nextPage uint64
	reuse    []uint64
	fresh    bool
}

// Fresh reports whether Open found an empty file, meaning no meta page
// exists yet and the caller must bootstrap one.
func (file *File) Fresh() bool { return file.fresh }

// Open opens or creates path, mmapping it read-only (writes go through
// WritePage's positioned pwrite, never through a writable mapping, so a
// partial write can never appear through a reader's view via an
// in-progress mmap mutation).
func Open(path string, pageSize int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	file := &File{f: f, pageSize: pageSize}
	if info.Size() == 0 {
		file.fresh = true
		if err := file.growTo(2); err != nil {
			f.Close()
			return nil, err
		}
		file.nextPage = 2
	} else {
		file.nextPage = uint64(info.Size()) / uint64(pageSize)
	}
	if err := file.remapLocked(); err != nil {
		f.Close()
		return nil, err
	}
	return file, nil
}

func (file *File) Close() error {
	if file.data != nil {
		if err := mmap.Unmap(file.data); err != nil {
			return err
		}
	}
	return file.f.Close()
}

func (file *File) PageSize() int { return file.pageSize }

// ReadPage returns a slice into the current mmap view for page id. The
// slice is valid only until the next Remap.
func (file *File) ReadPage(id uint64) []byte {
	off := id * uint64(file.pageSize)
	return file.data[off : off+uint64(file.pageSize)]
}

// WritePage writes buf (exactly one page long) to page id via a
// positioned write, bypassing the mmap view.
func (file *File) WritePage(id uint64, buf []byte) error {
	if len(buf) != file.pageSize {
		panic(fmt.Sprintf("store: WritePage: buf is %d bytes, want %d", len(buf), file.pageSize))
	}
	off := int64(id) * int64(file.pageSize)
	if end := id + 1; end > file.nextPage {
		if err := file.growTo(end); err != nil {
			return err
		}
	}
	_, err := file.f.WriteAt(buf, off)
	return err
}

// growTo ensures the file is at least n pages long, refusing to grow
// past the platform's mmap ceiling (mmap.MaxSize) rather than truncating
// to a size Remap could never successfully map.
func (file *File) growTo(n uint64) error {
	size := int64(n) * int64(file.pageSize)
	if size > mmap.MaxSize {
		return fmt.Errorf("store: grow to %d pages: %d bytes exceeds mmap.MaxSize (%d)", n, size, mmap.MaxSize)
	}
	if err := file.f.Truncate(size); err != nil {
		return fmt.Errorf("store: grow to %d pages: %w", n, err)
	}
	if n > file.nextPage {
		file.nextPage = n
	}
	return nil
}

// AllocPage returns the next page id, preferring the reuse list (spec.md
// §4.3: "pops the next reusable id" when non-empty) over growing the file.
func (file *File) AllocPage() uint64 {
	if n := len(file.reuse); n > 0 {
		id := file.reuse[n-1]
		file.reuse = file.reuse[:n-1]
		return id
	}
	id := file.nextPage
	file.nextPage++
	return id
}

// PushReusable adds a page id to the reuse list. Called by the freelist
// package once a page's freeing transaction is no longer visible to any
// reader (spec.md §4.5's reclamation step).
func (file *File) PushReusable(ids ...uint64) {
	file.reuse = append(file.reuse, ids...)
}

// NextPage reports the file's current page-count high-water mark, stored
// in the meta page's next_page field.
func (file *File) NextPage() uint64 { return file.nextPage }

// Sync flushes pending writes to stable storage.
func (file *File) Sync() error {
	return mmap.Fdatasync(file.f, file.data)
}

// Remap unmaps and re-mmaps the file at its current size (spec.md §4.3:
// "unmaps and re-mmaps the file at current size"), replacing the slices
// returned by prior ReadPage calls. Must be called with the writer mutex
// held by the caller (zat.Database), since it invalidates every
// outstanding reader's borrowed page slices at a remap boundary.
func (file *File) Remap() error {
	file.mu.Lock()
	defer file.mu.Unlock()
	return file.remapLocked()
}

func (file *File) remapLocked() error {
	if file.data != nil {
		if err := mmap.Unmap(file.data); err != nil {
			return err
		}
	}
	size := int(file.nextPage) * file.pageSize
	data, err := mmap.Map(file.f, size, mmap.RandomAccess)
	if err != nil {
		return err
	}
	file.data = data
	return nil
}

// ReadMetaSlots returns the two raw meta-page buffers (pages 0 and 1).
func (file *File) ReadMetaSlots() (slot0, slot1 []byte) {
	return file.ReadPage(0), file.ReadPage(1)
}

// WriteMeta writes m into the given slot (0 or 1) and fsyncs it.
func (file *File) WriteMeta(slot int, m *Meta) error {
	buf := make([]byte, file.pageSize)
	m.Encode(buf)
	if err := file.WritePage(uint64(slot), buf); err != nil {
		return err
	}
	return file.Sync()
}

// ActiveMeta implements spec.md §4.3's active-meta selection and reports
// which slot a subsequent commit should target.
func (file *File) ActiveMeta() (active *Meta, writeSlot int, err error) {
	s0, s1 := file.ReadMetaSlots()
	active, _, writeSlot, err = chooseActiveSlot(s0, s1)
	return active, writeSlot, err
}
