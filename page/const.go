package page

// Type is the one-byte page kind stored at offset 0 of every page buffer.
type Type uint8

const (
	TypeBranch   Type = 0x01
	TypeLeaf     Type = 0x02
	TypeOverflow Type = 0x03
	TypeFree     Type = 0x04
)

func (t Type) String() string {
	switch t {
	case TypeBranch:
		return "branch"
	case TypeLeaf:
		return "leaf"
	case TypeOverflow:
		return "overflow"
	case TypeFree:
		return "free"
	default:
		return "invalid"
	}
}

// Header sizes. Leaf drops the prev/next sibling pointers spec.md §6 lists
// in its reference byte layout — see leaf.go's doc comment for why — so
// its header is smaller than the 24 bytes spec.md's wire table quotes for
// the source this was distilled from.
const (
	LeafHeaderSize     = 8  // type(1) | index_id(1) | num_entries(2) | reserved(4)
	BranchHeaderSize   = 16 // type(1) | index_id(1) | num_entries(2) | reserved(4) | right_child(8)
	OverflowHeaderSize = 20 // type(1) | index_id(1) | reserved(2) | next(8) | data_len(4) | reserved(4)
	FreeHeaderSize     = 8  // type(1) | index_id(1) | reserved(6)

	slotSize = 2 // bytes per slot-array entry (offset into the page buffer)
)

// Index identifiers tag every branch/leaf page with the logical tree it
// belongs to (spec.md §4.6/§4.5's four datom indexes plus FreeDB), purely
// for diagnostics and dump output — page lookups never consult this byte.
const (
	IndexEAV    uint8 = 1
	IndexAVE    uint8 = 2
	IndexVAE    uint8 = 3
	IndexTxLog  uint8 = 4
	IndexFreeDB uint8 = 5
)

// PageType reads the type byte common to every page layout.
func PageType(buf []byte) Type { return Type(buf[0]) }

// IndexID reads the index-id byte common to leaf/branch/overflow headers.
func IndexID(buf []byte) uint8 { return buf[1] }
