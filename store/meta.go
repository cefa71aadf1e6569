package store

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Magic identifies a ZatDB file, spec.md §6: the ASCII bytes "ZATD" read
// as a big-endian uint32.
const Magic uint32 = 0x5A415444

const Version uint32 = 1

// MetaSize is the fixed on-disk size of a Meta struct, spec.md §6:
// magic(4) | version(4) | page_size(4) | flags(4) | tx_id(8) | 5 roots(8
// each) | next_entity(8) | next_page(8) | datom_count(8) | crc32(4).
const MetaSize = 4 + 4 + 4 + 4 + 8 + 5*8 + 8 + 8 + 8 + 4

var (
	// ErrInvalidMagic means the page does not start with the ZATD magic.
	ErrInvalidMagic = errors.New("store: invalid magic")
	// ErrVersionMismatch means the page's format version is not understood.
	ErrVersionMismatch = errors.New("store: version mismatch")
	// ErrChecksum means the page's CRC-32 does not match its contents.
	ErrChecksum = errors.New("store: checksum mismatch")
)

// Meta is the crash-safe root pointer set written to one of the two meta
// slots (pages 0 and 1) on every commit. Modeled on
// ranhaoliuLeo-bottle/bmeta.Data's Magic/Version/Flags/Checksum shape,
// expanded to the five roots and counters spec.md §6 fixes, and switched
// from that package's FNV64a GenSum64 to CRC-32 for on-disk compatibility
// with the format spec.md mandates.
type Meta struct {
	Version    uint32
	PageSize   uint32
	Flags      uint32
	TxID       uint64
	EAVRoot    uint64
	AVERoot    uint64
	VAERoot    uint64
	TxLogRoot  uint64
	FreeRoot   uint64
	NextEntity uint64
	NextPage   uint64
	DatomCount uint64
}

// Encode writes m into buf (which must be at least MetaSize long),
// including the trailing CRC-32.
func (m *Meta) Encode(buf []byte) {
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	binary.BigEndian.PutUint32(buf[4:8], m.Version)
	binary.BigEndian.PutUint32(buf[8:12], m.PageSize)
	binary.BigEndian.PutUint32(buf[12:16], m.Flags)
	binary.BigEndian.PutUint64(buf[16:24], m.TxID)
	binary.BigEndian.PutUint64(buf[24:32], m.EAVRoot)
	binary.BigEndian.PutUint64(buf[32:40], m.AVERoot)
	binary.BigEndian.PutUint64(buf[40:48], m.VAERoot)
	binary.BigEndian.PutUint64(buf[48:56], m.TxLogRoot)
	binary.BigEndian.PutUint64(buf[56:64], m.FreeRoot)
	binary.BigEndian.PutUint64(buf[64:72], m.NextEntity)
	binary.BigEndian.PutUint64(buf[72:80], m.NextPage)
	binary.BigEndian.PutUint64(buf[80:88], m.DatomCount)
	sum := crc32.ChecksumIEEE(buf[0:88])
	binary.BigEndian.PutUint32(buf[88:92], sum)
}

// DecodeMeta parses and validates a meta page. It returns ErrInvalidMagic,
// ErrVersionMismatch, or ErrChecksum on any validation failure — spec.md
// §4.3: "a meta page is valid iff magic, version, and checksum all verify."
func DecodeMeta(buf []byte) (*Meta, error) {
	if len(buf) < MetaSize {
		return nil, ErrInvalidMagic
	}
	if binary.BigEndian.Uint32(buf[0:4]) != Magic {
		return nil, ErrInvalidMagic
	}
	version := binary.BigEndian.Uint32(buf[4:8])
	if version != Version {
		return nil, ErrVersionMismatch
	}
	sum := crc32.ChecksumIEEE(buf[0:88])
	if binary.BigEndian.Uint32(buf[88:92]) != sum {
		return nil, ErrChecksum
	}
	return &Meta{
		Version:    version,
		PageSize:   binary.BigEndian.Uint32(buf[8:12]),
		Flags:      binary.BigEndian.Uint32(buf[12:16]),
		TxID:       binary.BigEndian.Uint64(buf[16:24]),
		EAVRoot:    binary.BigEndian.Uint64(buf[24:32]),
		AVERoot:    binary.BigEndian.Uint64(buf[32:40]),
		VAERoot:    binary.BigEndian.Uint64(buf[40:48]),
		TxLogRoot:  binary.BigEndian.Uint64(buf[48:56]),
		FreeRoot:   binary.BigEndian.Uint64(buf[56:64]),
		NextEntity: binary.BigEndian.Uint64(buf[64:72]),
		NextPage:   binary.BigEndian.Uint64(buf[72:80]),
		DatomCount: binary.BigEndian.Uint64(buf[80:88]),
	}, nil
}

// chooseActiveSlot implements spec.md §4.3's "active meta selection": both
// slots are read; the valid one with the highest tx_id is active. It
// returns the active meta and the slot index (0 or 1) that should be
// overwritten on the next commit (the other slot, or whichever is
// invalid if one is).
func chooseActiveSlot(slot0, slot1 []byte) (active *Meta, activeSlot int, writeSlot int, err error) {
	m0, err0 := DecodeMeta(slot0)
	m1, err1 := DecodeMeta(slot1)
	switch {
	case err0 != nil && err1 != nil:
		return nil, -1, -1, errors.Join(ErrInvalidMagic, err0, err1)
	case err0 != nil:
		return m1, 1, 0, nil
	case err1 != nil:
		return m0, 0, 1, nil
	case m0.TxID >= m1.TxID:
		return m0, 0, 1, nil
	default:
		return m1, 1, 0, nil
	}
}
