package freelist

// MaxTrackedPages caps how many orphaned page ids a single Tracker holds
// in memory before spilling, per spec.md §9's resolved Open Question
// (source constant: 256).
const MaxTrackedPages = 256

// Tracker is the in-memory FreePageTracker of spec.md §4.5: a small
// fixed-capacity list of page ids orphaned during the current
// transaction. It implements btree.FreeTracker, so a Tree installed with
// WithFree(tracker) reports every COW-superseded page here automatically.
//
// Grounded on Govetachun-Go-DB/kv-store/free_list.go's per-tx pending-list
// shape, narrowed to a plain slice plus spill-on-overflow since spec.md
// fixes a hard cap the source implementation does not.
type Tracker struct {
	pages   []uint64
	spilled [][]uint64
	max     int
}

// NewTracker returns a Tracker capped at MaxTrackedPages.
func NewTracker() *Tracker {
	return &Tracker{max: MaxTrackedPages}
}

// Free records one orphaned page id, spilling the current batch into a
// held-aside chunk if the cap is reached.
func (t *Tracker) Free(id uint64) {
	t.pages = append(t.pages, id)
	if len(t.pages) >= t.max {
		t.spill()
	}
}

func (t *Tracker) spill() {
	t.spilled = append(t.spilled, t.pages)
	t.pages = nil
}

// Empty reports whether the tracker holds no page ids at all.
func (t *Tracker) Empty() bool {
	return len(t.pages) == 0 && len(t.spilled) == 0
}

// Drain returns every chunk the tracker has accumulated — one FreeDB
// value per chunk, per spec.md §9's spilling resolution — and resets the
// tracker to empty.
func (t *Tracker) Drain() [][]uint64 {
	chunks := t.spilled
	if len(t.pages) > 0 {
		chunks = append(chunks, t.pages)
	}
	t.spilled = nil
	t.pages = nil
	return chunks
}
