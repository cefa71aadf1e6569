package txn

// tempidTable maps each distinct tempid name used by one transaction to
// the entity id allocated (or upsert-remapped) for it, spec.md §4.8
// steps 2-3.
type tempidTable struct {
	ids map[string]uint64
}

func newTempidTable() *tempidTable {
	return &tempidTable{ids: map[string]uint64{}}
}

func (t *tempidTable) set(name string, id uint64) { t.ids[name] = id }

func (t *tempidTable) get(name string) uint64 { return t.ids[name] }
