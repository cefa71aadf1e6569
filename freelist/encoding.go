package freelist

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Adapted from the teacher's encoding.go MsgPack-dispatch pattern,
// narrowed to the one call site this module needs: a FreeDB entry's value
// is the list of page ids a transaction orphaned, spec.md §4.5.

func encodePageIDs(ids []uint64) []byte {
	buf, err := msgpack.Marshal(ids)
	if err != nil {
		panic(fmt.Errorf("freelist: failed to encode %d page ids: %w", len(ids), err))
	}
	return buf
}

func decodePageIDs(buf []byte) ([]uint64, error) {
	var ids []uint64
	dec := msgpack.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&ids); err != nil {
		return nil, fmt.Errorf("freelist: failed to decode page id list: %w", err)
	}
	return ids, nil
}
