package zat

import (
	"os"

	"github.com/n1kben/zat/compress"
	"github.com/n1kben/zat/txn"
)

// Options configures Open, mirroring the teacher's db.go Options shape
// (Logf/Verbose hooks, a size override) generalized to spec.md §6's
// programmatic-only configuration surface — there is no env-var or CLI
// layer at the core level.
type Options struct {
	// PageSize overrides the on-disk page size. Defaults to
	// os.Getpagesize(). The same value is used when opening an existing
	// file; the page_size recorded in its meta page is not consulted.
	PageSize int

	// MaxReaders bounds the reader-slot table, spec.md §5. Defaults to
	// 126.
	MaxReaders int

	// ReadOnly opens the file without ever acquiring the writer mutex;
	// Transact returns ErrReadOnly.
	ReadOnly bool

	// Compression names a codec for overflow-page payloads. Defaults to
	// compress.None. No write path reads it: values are stored inline in
	// index keys and never spill into overflow pages.
	Compression compress.Type

	// Logf receives one terse message per commit (duration, datom
	// count, reclaimed page count) if set.
	Logf func(format string, args ...any)

	// Verbose additionally routes the same events through log/slog at
	// debug level, the ambient-stack logging idiom grounded on the
	// teacher's own use of slog-style structured fields in its
	// lower-level files.
	Verbose bool

	// OnChange, if set, is invoked once per successful Transact with
	// every datom the transaction wrote or retracted, letting a
	// collaborator (e.g. a query engine's live-query layer) react to
	// writes without polling the EAV index.
	OnChange func(*txn.ChangeSet)
}

func (o Options) pageSize() int {
	if o.PageSize > 0 {
		return o.PageSize
	}
	return os.Getpagesize()
}

func (o Options) maxReaders() int {
	if o.MaxReaders > 0 {
		return o.MaxReaders
	}
	return DefaultMaxReaders
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}
