package index

import (
	"bytes"

	"github.com/n1kben/zat/btree"
	"github.com/n1kben/zat/codec"
	"github.com/n1kben/zat/page"
)

// Roots is the five-tuple spec.md §6 stores in the meta page, minus
// FreeDB (owned by the freelist package).
type Roots struct {
	EAV, AVE, VAE, TxLog uint64
}

// Manager is the IndexManager of spec.md §4.6 (C7): the four datom
// indexes as one handle, cheap to copy like btree.Tree since each field
// is just (root, pager, cmp). Insert/DeleteDatom return an updated
// Manager rather than mutating the receiver, mirroring btree.Tree's COW
// discipline.
type Manager struct {
	EAV, AVE, VAE, TxLog btree.Tree
}

// Open wraps an existing set of index roots (0 for a brand new index).
func Open(roots Roots, pager btree.Pager) Manager {
	return Manager{
		EAV:   btree.New(roots.EAV, page.IndexEAV, pager, bytes.Compare),
		AVE:   btree.New(roots.AVE, page.IndexAVE, pager, bytes.Compare),
		VAE:   btree.New(roots.VAE, page.IndexVAE, pager, bytes.Compare),
		TxLog: btree.New(roots.TxLog, page.IndexTxLog, pager, bytes.Compare),
	}
}

// WithFree installs one FreeTracker across all four trees, per spec.md
// §4.8 step 4: "Install the FreePageTracker on all four index trees."
func (m Manager) WithFree(f btree.FreeTracker) Manager {
	m.EAV = m.EAV.WithFree(f)
	m.AVE = m.AVE.WithFree(f)
	m.VAE = m.VAE.WithFree(f)
	m.TxLog = m.TxLog.WithFree(f)
	return m
}

// Roots reports the manager's current root tuple, to be installed into
// the next meta write.
func (m Manager) Roots() Roots {
	return Roots{EAV: m.EAV.Root, AVE: m.AVE.Root, VAE: m.VAE.Root, TxLog: m.TxLog.Root}
}

// InsertDatom writes EAV and TxLog unconditionally and consults
// (indexed, ref) — resolved by the caller from the schema cache — to
// decide AVE and VAE, per spec.md §4.6's IndexManager.insertDatom.
func (m Manager) InsertDatom(d Datom, indexed, ref bool) (Manager, error) {
	var err error
	m.EAV, err = m.EAV.Insert(EncodeEAVKey(d.Entity, d.Attr, d.Value), nil)
	if err != nil {
		return m, err
	}
	if indexed {
		m.AVE, err = m.AVE.Insert(EncodeAVEKey(d.Attr, d.Value, d.Entity), nil)
		if err != nil {
			return m, err
		}
	}
	if ref {
		m.VAE, err = m.VAE.Insert(EncodeVAEKey(d.Value.AsRef(), d.Attr, d.Entity), nil)
		if err != nil {
			return m, err
		}
	}
	m.TxLog, err = m.TxLog.Insert(EncodeTxLogKey(d.Tx, d.Entity, d.Attr, d.Value, d.Op), nil)
	if err != nil {
		return m, err
	}
	return m, nil
}

// DeleteDatom removes a datom's (E,A,V) from EAV, AVE (if indexed), and
// VAE (if ref) — spec.md §4.6's "Deletion from indexes". TxLog is
// append-only and never has entries removed; the caller is responsible
// for inserting the corresponding retraction record via InsertDatom.
func (m Manager) DeleteDatom(d Datom, indexed, ref bool) (Manager, error) {
	var err error
	m.EAV, err = m.EAV.Delete(EncodeEAVKey(d.Entity, d.Attr, d.Value))
	if err != nil {
		return m, err
	}
	if indexed {
		m.AVE, err = m.AVE.Delete(EncodeAVEKey(d.Attr, d.Value, d.Entity))
		if err != nil {
			return m, err
		}
	}
	if ref {
		m.VAE, err = m.VAE.Delete(EncodeVAEKey(d.Value.AsRef(), d.Attr, d.Entity))
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

// InsertTxLogOnly appends one TxLog entry without touching EAV/AVE/VAE,
// for a retraction record recorded alongside a separate DeleteDatom call
// (spec.md §4.8 step 4's cardinality-one replace and explicit retract).
func (m Manager) InsertTxLogOnly(d Datom) (Manager, error) {
	var err error
	m.TxLog, err = m.TxLog.Insert(EncodeTxLogKey(d.Tx, d.Entity, d.Attr, d.Value, d.Op), nil)
	return m, err
}

// LookupEntityAttr probes EAV for the first existing `(entity, attr, *)`
// datom, per spec.md §4.8 step 4's cardinality-one replace check.
func (m Manager) LookupEntityAttr(entity, attr uint64) (codec.Value, bool) {
	prefix := EncodeEAVPrefix(entity, attr)
	it := m.EAV.Seek(prefix)
	if !it.Valid() || !bytes.HasPrefix(it.Key(), prefix) {
		return codec.Value{}, false
	}
	v, err := DecodeEAVValue(it.Key())
	if err != nil {
		return codec.Value{}, false
	}
	return v, true
}

// ProbeAVE looks for any entity already holding (attr, value) in AVE,
// per spec.md §4.8 steps 3 (unique-identity upsert) and 4 (unique-value
// conflict detection).
func (m Manager) ProbeAVE(attr uint64, value codec.Value) (entity uint64, found bool) {
	prefix := EncodeAVEPrefix(attr, value)
	it := m.AVE.Seek(prefix)
	if !it.Valid() || !bytes.HasPrefix(it.Key(), prefix) {
		return 0, false
	}
	return DecodeAVEEntity(it.Key()), true
}
