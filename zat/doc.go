// Package zat is the embedded, single-file ZatDB storage core: the
// public Database handle that wires together store.File's dual
// meta-page commit protocol, index.Manager's four datom indexes,
// freelist.FreeDB's page reclamation, schema.Cache's attribute cache,
// and txn.Transact's transaction pipeline into the one-writer/N-reader
// concurrency model of spec.md §5.
//
// Grounded on the teacher's root db.go (deleted, credited here for the
// Options/Tx life-cycle shape) and errors.go/monitoring.go/debug.go,
// adapted respectively into errors.go, stats.go, and dump.go in this
// package.
package zat
