// Package format declares the on-disk layout of a SymCache file: the
// header, the fixed-width tables that follow it, and the string pool at
// the end. It provides a read-only, zero-copy view over a byte slice
// (typically a memory-mapped file) — no record is ever eagerly
// deserialized or copied beyond the handful of fixed-width fields an
// accessor returns.
//
// Writing is the responsibility of the sibling writer package; this
// package only knows how to lay bytes out and how to validate them.
package format

import (
	"encoding/binary"

	"github.com/symc/symcache"
)

// Magic is the four-byte file preamble, "SYMC" serialized little-endian.
const Magic uint32 = 0x434d5953 // "SYMC" read as a little-endian uint32

// magicFlipped is what Magic looks like on a byte-swapped (big-endian)
// host. Readers recognize it only to produce a precise EndianMismatch
// error; they never byte-swap to recover.
const magicFlipped uint32 = 0x53594d43

// Version is the only file format version this package reads or writes.
const Version uint32 = 1000

// HeaderSize is the fixed size of the header in bytes.
const HeaderSize = 80

// Record sizes, fixed-width and written back to back with no padding.
const (
	FileRecordSize           = 12 // 3 × Index
	FunctionRecordSize       = 12 // Index + RelativeAddress + uint8 + 3 pad
	SourceLocationRecordSize = 16 // 4 × uint32-sized fields
	StringRecordSize         = 8  // offset + length
	RangeRecordSize          = 4  // RelativeAddress
	RangeSourceLocSize       = 4  // Index
)

// MaxInlineDepth bounds how many times Lookup follows InlinedIntoIdx
// before giving up, preventing a corrupt or malicious cache from causing
// an unbounded (or cyclic) walk.
const MaxInlineDepth = 256

// PadTo8 returns the number of padding bytes needed to bring n up to the
// next multiple of 8. Both writer and reader use this same helper so
// that alignment can never drift between them.
func PadTo8(n int) int {
	return (8 - n%8) % 8
}

// Header is the fixed 80-byte preamble of a SymCache file. Field order
// matches what is written to and read from disk exactly: encoding/binary
// writes struct fields back to back with no implicit padding, so the Go
// field order below *is* the wire layout.
type Header struct {
	Magic              uint32
	Version            uint32
	DebugID            [20]byte
	Arch               uint8
	_                  [3]byte // pad
	NumStrings         uint32
	NumFiles           uint32
	NumFunctions       uint32
	NumSourceLocations uint32
	NumRanges          uint32
	StringBytes        uint32
	_                  [8]byte // pad, align RangeThreshold to 8
	RangeThreshold     uint64
	_                  [8]byte // reserved, always zero (see Open Questions)
}

// Marshal writes h to b, which must be at least HeaderSize bytes. It never
// allocates.
func (h *Header) Marshal(b []byte) {
	_ = b[HeaderSize-1]
	e := binary.LittleEndian
	e.PutUint32(b[0:], h.Magic)
	e.PutUint32(b[4:], h.Version)
	copy(b[8:28], h.DebugID[:])
	b[28] = h.Arch
	b[29], b[30], b[31] = 0, 0, 0
	e.PutUint32(b[32:], h.NumStrings)
	e.PutUint32(b[36:], h.NumFiles)
	e.PutUint32(b[40:], h.NumFunctions)
	e.PutUint32(b[44:], h.NumSourceLocations)
	e.PutUint32(b[48:], h.NumRanges)
	e.PutUint32(b[52:], h.StringBytes)
	for i := 56; i < 64; i++ {
		b[i] = 0
	}
	e.PutUint64(b[64:], h.RangeThreshold)
	for i := 72; i < 80; i++ {
		b[i] = 0
	}
}

// unmarshalHeader reads a Header from b, which must be at least
// HeaderSize bytes.
func unmarshalHeader(b []byte) Header {
	_ = b[HeaderSize-1]
	e := binary.LittleEndian
	var h Header
	h.Magic = e.Uint32(b[0:])
	h.Version = e.Uint32(b[4:])
	copy(h.DebugID[:], b[8:28])
	h.Arch = b[28]
	h.NumStrings = e.Uint32(b[32:])
	h.NumFiles = e.Uint32(b[36:])
	h.NumFunctions = e.Uint32(b[40:])
	h.NumSourceLocations = e.Uint32(b[44:])
	h.NumRanges = e.Uint32(b[48:])
	h.StringBytes = e.Uint32(b[52:])
	h.RangeThreshold = e.Uint64(b[64:])
	return h
}

// DebugId returns the header's debug id as a symcache.DebugId.
func (h *Header) DebugId() symcache.DebugId {
	return symcache.DebugIdFromBytes(h.DebugID)
}
