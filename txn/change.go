package txn

import "fmt"

// Op distinguishes an assertion from a retraction in a post-commit
// Change notification. Adapted from the teacher's change.go OpPut/
// OpDelete pair, renamed to match spec.md's datom vocabulary.
type Op int

const (
	OpNone    Op = 0
	OpAssert  Op = 1
	OpRetract Op = 2
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpAssert:
		return "assert"
	case OpRetract:
		return "retract"
	default:
		return fmt.Sprintf("invalid op %d", int(o))
	}
}

// Change describes one datom written by a committed transaction. A
// collaborator (e.g. the query engine's live-query layer) can subscribe
// via Options.OnChange to react to writes without polling the EAV index,
// matching spec.md §4.8 step 8's "reload schema cache if db-partition
// touched" trigger generalized into a hook any caller can use.
type Change struct {
	TxID   uint64
	Op     Op
	Entity uint64
	Attr   uint64
	Value  []byte // codec-encoded value, valid for the lifetime of this callback
}

// ChangeSet collects every Change produced by one Transact call, in the
// order the datoms were written.
type ChangeSet struct {
	TxID    uint64
	Changes []Change
}

func (cs *ChangeSet) record(op Op, entity, attr uint64, encodedValue []byte) {
	cs.Changes = append(cs.Changes, Change{
		TxID:   cs.TxID,
		Op:     op,
		Entity: entity,
		Attr:   attr,
		Value:  encodedValue,
	})
}
