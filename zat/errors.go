package zat

import (
	"errors"
	"fmt"

	"github.com/n1kben/zat/store"
	"github.com/n1kben/zat/txn"
)

// Re-exported so a caller never has to import the txn package directly
// to compare against errors.Is, grounded on the teacher's errors.go
// sentinel-wrapping pattern.
var (
	ErrUnknownAttribute    = txn.ErrUnknownAttribute
	ErrTypeMismatch        = txn.ErrTypeMismatch
	ErrUniqueValueConflict = txn.ErrUniqueValueConflict
	ErrTempidOverflow      = txn.ErrTempidOverflow
	ErrDatomOverflow       = txn.ErrDatomOverflow
)

var (
	// ErrCorruptDatabase means neither meta slot decoded validly on Open.
	ErrCorruptDatabase = errors.New("zat: corrupt database")
	// ErrTooManyReaders means MaxReaders snapshots are already open.
	ErrTooManyReaders = errors.New("zat: too many concurrent readers")
	// ErrReadOnly means Transact was called on a database opened with
	// Options.ReadOnly.
	ErrReadOnly = errors.New("zat: database is read-only")
	// ErrClosed means a method was called after Close.
	ErrClosed = errors.New("zat: database is closed")
)

// MetaError wraps a meta-slot decode failure with which slot failed,
// directly grounded on the teacher's errors.go DataError: a small
// context-carrying type whose Unwrap exposes the sentinel underneath.
type MetaError struct {
	Slot int
	Err  error
}

func metaErrf(slot int, err error) error {
	return &MetaError{Slot: slot, Err: err}
}

func (e *MetaError) Unwrap() error { return e.Err }

func (e *MetaError) Error() string {
	return fmt.Sprintf("zat: meta slot %d: %v", e.Slot, e.Err)
}

// classifyMetaErr maps a store package decode error onto ErrCorruptDatabase
// when neither slot verified, matching ActiveMeta's own two-slot fallback.
func classifyMetaErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrInvalidMagic) || errors.Is(err, store.ErrChecksum) || errors.Is(err, store.ErrVersionMismatch) {
		return fmt.Errorf("%w: %v", ErrCorruptDatabase, err)
	}
	return err
}
