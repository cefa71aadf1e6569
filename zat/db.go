package zat

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/n1kben/zat/btree"
	"github.com/n1kben/zat/freelist"
	"github.com/n1kben/zat/index"
	"github.com/n1kben/zat/schema"
	"github.com/n1kben/zat/store"
	"github.com/n1kben/zat/txn"
)

// Database is the single open handle to one ZatDB file: the writer
// mutex and reader-slot table of spec.md §5, plus the current
// generation's index.Manager, freelist.FreeDB, and schema.Cache.
// Grounded on the teacher's (deleted) root db.go for the overall
// Options-driven Open/Tx life-cycle shape, adapted from bbolt's
// transaction model to the dual-meta-slot commit protocol spec.md §4.3
// fixes instead.
type Database struct {
	file    *store.File
	opts    Options
	readers *readerTable

	mu sync.Mutex // serializes Transact, per spec.md §5's single writer

	// Generation state, read under mu by a writer and snapshotted into
	// a Snapshot for lock-free reader access; every field is replaced
	// wholesale (never mutated) at the end of a successful Transact.
	mgr        index.Manager
	fdb        freelist.FreeDB
	cache      *schema.Cache
	txID       uint64
	nextEntity uint64
	datomCount uint64
	writeSlot  int // meta slot to overwrite on the next commit

	closed bool
}

// Open opens or creates the ZatDB file at path.
func Open(path string, opts Options) (*Database, error) {
	file, err := store.Open(path, opts.pageSize())
	if err != nil {
		return nil, err
	}

	db := &Database{
		file:    file,
		opts:    opts,
		readers: newReaderTable(opts.maxReaders()),
	}

	if file.Fresh() {
		if err := db.bootstrap(); err != nil {
			file.Close()
			return nil, err
		}
		return db, nil
	}

	if err := db.loadExisting(); err != nil {
		file.Close()
		return nil, err
	}
	return db, nil
}

// bootstrap installs the eight reserved attributes into a brand new
// file and writes both meta slots, spec.md §4.7's "Bootstrap inserts
// their self-describing datoms into a fresh EAV and sets
// next_entity_id = 9."
func (db *Database) bootstrap() error {
	mgr := index.Open(index.Roots{}, db.file)
	mgr, err := schema.Bootstrap(mgr, 0)
	if err != nil {
		return fmt.Errorf("zat: bootstrap: %w", err)
	}
	cache, err := schema.Load(mgr)
	if err != nil {
		return fmt.Errorf("zat: bootstrap: %w", err)
	}

	db.mgr = mgr
	db.fdb = freelist.Open(0, db.file)
	db.cache = cache
	db.txID = 0
	db.nextEntity = schema.NextEntityAfterBootstrap
	db.datomCount = schema.BootstrapDatomCount
	db.writeSlot = 0

	meta := db.buildMeta()
	if err := db.file.WriteMeta(0, meta); err != nil {
		return err
	}
	if err := db.file.WriteMeta(1, meta); err != nil {
		return err
	}
	// Both slots now hold tx 0; ActiveMeta's tie-break picks slot 0 as
	// active on a later reopen, so the next commit must target slot 1.
	db.writeSlot = 1
	return db.file.Remap()
}

// loadExisting re-derives in-memory state from the active meta slot of
// an already-populated file, spec.md §4.3's "active meta selection".
func (db *Database) loadExisting() error {
	active, writeSlot, err := db.file.ActiveMeta()
	if err != nil {
		return classifyMetaErr(err)
	}

	roots := index.Roots{EAV: active.EAVRoot, AVE: active.AVERoot, VAE: active.VAERoot, TxLog: active.TxLogRoot}
	mgr := index.Open(roots, db.file)
	cache, err := schema.Load(mgr)
	if err != nil {
		return err
	}

	db.mgr = mgr
	db.fdb = freelist.Open(active.FreeRoot, db.file)
	db.cache = cache
	db.txID = active.TxID
	db.nextEntity = active.NextEntity
	db.datomCount = active.DatomCount
	db.writeSlot = writeSlot
	return nil
}

func (db *Database) buildMeta() *store.Meta {
	roots := db.mgr.Roots()
	return &store.Meta{
		Version:    store.Version,
		PageSize:   uint32(db.file.PageSize()),
		TxID:       db.txID,
		EAVRoot:    roots.EAV,
		AVERoot:    roots.AVE,
		VAERoot:    roots.VAE,
		TxLogRoot:  roots.TxLog,
		FreeRoot:   db.fdb.Tree.Root,
		NextEntity: db.nextEntity,
		NextPage:   db.file.NextPage(),
		DatomCount: db.datomCount,
	}
}

// Close releases the underlying file. It does not wait for open
// Snapshots to close first; callers must arrange that themselves, same
// as the teacher's own bbolt-backed Close.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	return db.file.Close()
}

// Transact runs one batch of statements through spec.md §4.8's
// pipeline and commits it atomically, implementing steps 7-8 the txn
// package itself cannot: handing the reclaimed free pages back to
// store.File, syncing the data pages, writing the new meta slot,
// syncing, remapping, and (if a db-partition entity was touched)
// reloading the schema cache.
func (db *Database) Transact(stmts []txn.Stmt) (txn.Result, error) {
	if db.opts.ReadOnly {
		return txn.Result{}, ErrReadOnly
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return txn.Result{}, ErrClosed
	}

	start := time.Now()
	now := start.UnixMicro()

	res, err := txn.Transact(db.mgr, db.fdb, db.cache, db.txID, db.nextEntity, db.datomCount, stmts, now)
	if err != nil {
		return txn.Result{}, err
	}

	// Reclaim pages freed by transactions no reader still depends on,
	// folding the reclaim's own orphans into this same commit via a
	// fresh tracker (spec.md §9's resolved carry-forward question).
	reclaimTracker := freelist.NewTracker()
	oldest := db.readers.oldestActive(res.TxID)
	fdb, reclaimed, err := res.FreeDB.Reclaim(reclaimTracker, oldest)
	if err != nil {
		return txn.Result{}, err
	}
	db.file.PushReusable(reclaimed...)
	if chunks := reclaimTracker.Drain(); len(chunks) > 0 {
		// Continue chunk numbering after res.NextChunk, the next index
		// generateAndWrite's own Commit left unused under this same tx id
		// — otherwise this call would silently overwrite the entries the
		// transaction just wrote for its own freed pages.
		fdb, _, err = fdb.Commit(res.TxID, res.NextChunk, chunks)
		if err != nil {
			return txn.Result{}, err
		}
	}

	db.mgr = res.Manager
	db.fdb = fdb
	db.txID = res.TxID
	db.nextEntity = res.NextEntity
	db.datomCount = res.DatomCount

	if err := db.file.Sync(); err != nil {
		return txn.Result{}, err
	}
	meta := db.buildMeta()
	if err := db.file.WriteMeta(db.writeSlot, meta); err != nil {
		return txn.Result{}, err
	}
	if err := db.file.Remap(); err != nil {
		return txn.Result{}, err
	}
	db.writeSlot = 1 - db.writeSlot

	if res.TouchedDB {
		cache, err := schema.Load(db.mgr)
		if err != nil {
			return txn.Result{}, err
		}
		db.cache = cache
	}

	db.opts.logf("zat: tx %d committed in %s, %d datoms, %d pages reclaimed", res.TxID, time.Since(start), res.DatomCount, len(reclaimed))
	if db.opts.Verbose {
		slog.Debug("zat: commit", "tx_id", res.TxID, "datom_count", res.DatomCount, "reclaimed", len(reclaimed))
	}

	if db.opts.OnChange != nil {
		db.opts.OnChange(res.Changes)
	}
	return res, nil
}

// CurrentRoots reports the index roots and counters the active meta
// slot currently holds, for diagnostics.
func (db *Database) CurrentRoots() (index.Roots, uint64, uint64, uint64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.mgr.Roots(), db.txID, db.nextEntity, db.datomCount
}

// OpenTree exposes one of the four datom indexes' underlying btree.Tree
// directly, for a query engine collaborator that wants to iterate
// without going through Manager's datom-shaped API.
func (db *Database) OpenTree(name string) (tree btree.Tree, ok bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	switch name {
	case "eav":
		return db.mgr.EAV, true
	case "ave":
		return db.mgr.AVE, true
	case "vae":
		return db.mgr.VAE, true
	case "txlog":
		return db.mgr.TxLog, true
	default:
		return btree.Tree{}, false
	}
}

// Schema returns the current schema cache snapshot. The returned
// pointer is stable until the next transaction that touches a
// db-partition entity triggers a reload; callers that hold it across a
// Transact call should re-fetch.
func (db *Database) Schema() *schema.Cache {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.cache
}

// BeginRead opens a read snapshot pinned to the database's current
// generation, occupying one reader-table slot until Close, per
// spec.md §5's "N concurrent read snapshots".
func (db *Database) BeginRead() (*Snapshot, error) {
	// Hold mu until the slot records TxID, so no commit can reclaim this
	// generation's pages between reading it and pinning it.
	db.mu.Lock()
	defer db.mu.Unlock()
	snap := &Snapshot{TxID: db.txID, Manager: db.mgr, Cache: db.cache, db: db}

	slot, ok := db.readers.acquire(snap.TxID)
	if !ok {
		return nil, ErrTooManyReaders
	}
	snap.slot = slot
	return snap, nil
}

// Snapshot is a consistent, immutable view over one committed
// generation: its Manager and Cache never change underfoot, even while
// the writer advances db past this tx id, since btree.Tree's COW
// discipline means no page this snapshot's roots reach is ever mutated
// in place.
type Snapshot struct {
	TxID    uint64
	Manager index.Manager
	Cache   *schema.Cache

	db   *Database
	slot int
}

// Close releases the snapshot's reader-table slot, letting the writer
// reclaim pages this generation held exclusively.
func (s *Snapshot) Close() {
	s.db.readers.release(s.slot)
}
