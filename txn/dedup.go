package txn

import "github.com/cespare/xxhash/v2"

// dedupSet tracks composite-key hashes already written within one
// transaction, letting a repeated cardinality-many assert of the same
// (E,A,V) later in the same input batch skip redundant COW work after
// the first write — the EAV insert is already idempotent on an exact
// key match, so this is purely an optimization, not a correctness
// requirement.
//
// Grounded on cespare/xxhash/v2's use in
// other_examples/alexhholmes-fredb__page.go for per-key checksums;
// reused here for a per-tx membership test instead.
type dedupSet struct {
	seen map[uint64]struct{}
}

func newDedupSet() *dedupSet {
	return &dedupSet{seen: map[uint64]struct{}{}}
}

// seenBefore reports whether key's hash was already recorded, and
// records it if not.
func (d *dedupSet) seenBefore(key []byte) bool {
	h := xxhash.Sum64(key)
	if _, ok := d.seen[h]; ok {
		return true
	}
	d.seen[h] = struct{}{}
	return false
}
