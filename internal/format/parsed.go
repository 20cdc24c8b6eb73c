package format

import (
	"unicode/utf8"

	"github.com/symc/symcache"
)

// Parsed is a validated, read-only view over a SymCache buffer. It borrows
// subslices of buf for each table and never copies or eagerly decodes a
// record; accessors decode one record at a time on demand. Parsed is safe
// for concurrent use by multiple goroutines, since it never mutates buf or
// its own fields after construction.
type Parsed struct {
	Header Header

	files           []byte
	functions       []byte
	sourceLocations []byte
	strings         []byte
	ranges          []byte
	rangeSourceLocs []byte
	stringBytes     []byte
}

// Open validates buf as a SymCache file and returns a Parsed view borrowing
// from it. buf must outlive the returned Parsed and everything derived
// from it.
func Open(buf []byte) (*Parsed, error) {
	if len(buf) < HeaderSize {
		return nil, &TruncatedError{Table: "header", Want: HeaderSize, Have: len(buf)}
	}
	h := unmarshalHeader(buf)
	if h.Magic != Magic {
		if h.Magic == magicFlipped {
			return nil, &EndianMismatchError{}
		}
		return nil, &BadMagicError{Got: h.Magic}
	}
	if h.Version != Version {
		return nil, &WrongVersionError{Got: h.Version}
	}

	p := &Parsed{Header: h}
	off := HeaderSize

	var err error
	if p.files, off, err = takeTable(buf, off, "files", int(h.NumFiles), FileRecordSize); err != nil {
		return nil, err
	}
	if p.functions, off, err = takeTable(buf, off, "functions", int(h.NumFunctions), FunctionRecordSize); err != nil {
		return nil, err
	}
	if p.sourceLocations, off, err = takeTable(buf, off, "source_locations", int(h.NumSourceLocations), SourceLocationRecordSize); err != nil {
		return nil, err
	}
	if p.strings, off, err = takeTable(buf, off, "strings", int(h.NumStrings), StringRecordSize); err != nil {
		return nil, err
	}
	if p.ranges, off, err = takeTable(buf, off, "ranges", int(h.NumRanges), RangeRecordSize); err != nil {
		return nil, err
	}
	if p.rangeSourceLocs, off, err = takeTable(buf, off, "range_source_locations", int(h.NumRanges), RangeSourceLocSize); err != nil {
		return nil, err
	}

	want := int(h.StringBytes)
	if off+want > len(buf) {
		return nil, &TruncatedError{Table: "string_bytes", Want: want, Have: len(buf) - off}
	}
	p.stringBytes = buf[off : off+want]

	return p, nil
}

// takeTable slices count records of recordSize bytes each out of buf
// starting at off, which must be 8-byte aligned, and returns the slice
// together with the (padded) offset of whatever follows it.
func takeTable(buf []byte, off int, name string, count, recordSize int) ([]byte, int, error) {
	if off%8 != 0 {
		return nil, 0, &BadAlignmentError{Table: name, Offset: off}
	}
	size := count * recordSize
	if off+size > len(buf) {
		return nil, 0, &TruncatedError{Table: name, Want: size, Have: len(buf) - off}
	}
	table := buf[off : off+size]
	next := off + size + PadTo8(size)
	return table, next, nil
}

// NumFiles, NumFunctions, NumSourceLocations, NumRanges and NumStrings
// report the row counts of each table, as declared by the header.
func (p *Parsed) NumFiles() int           { return len(p.files) / FileRecordSize }
func (p *Parsed) NumFunctions() int       { return len(p.functions) / FunctionRecordSize }
func (p *Parsed) NumSourceLocations() int { return len(p.sourceLocations) / SourceLocationRecordSize }
func (p *Parsed) NumRanges() int          { return len(p.ranges) / RangeRecordSize }
func (p *Parsed) NumStrings() int         { return len(p.strings) / StringRecordSize }

// File returns the File record at idx, or a TruncatedError if idx is
// IndexAbsent or not below NumFiles.
func (p *Parsed) File(idx symcache.Index) (File, error) {
	i := int(idx)
	if i < 0 || i >= p.NumFiles() {
		return File{}, &TruncatedError{Table: "files", Want: (i + 1) * FileRecordSize, Have: len(p.files)}
	}
	return UnmarshalFile(p.files[i*FileRecordSize:]), nil
}

// Function returns the Function record at idx.
func (p *Parsed) Function(idx symcache.Index) (Function, error) {
	i := int(idx)
	if i < 0 || i >= p.NumFunctions() {
		return Function{}, &TruncatedError{Table: "functions", Want: (i + 1) * FunctionRecordSize, Have: len(p.functions)}
	}
	return UnmarshalFunction(p.functions[i*FunctionRecordSize:]), nil
}

// SourceLocation returns the SourceLocation record at idx.
func (p *Parsed) SourceLocation(idx symcache.Index) (SourceLocation, error) {
	i := int(idx)
	if i < 0 || i >= p.NumSourceLocations() {
		return SourceLocation{}, &TruncatedError{Table: "source_locations", Want: (i + 1) * SourceLocationRecordSize, Have: len(p.sourceLocations)}
	}
	return UnmarshalSourceLocation(p.sourceLocations[i*SourceLocationRecordSize:]), nil
}

// StringAt returns the interned string at idx, validating that its
// (offset, length) stays within the string pool and is valid UTF-8.
func (p *Parsed) StringAt(idx symcache.Index) (string, error) {
	i := int(idx)
	if i < 0 || i >= p.NumStrings() {
		return "", &InvalidStringError{Index: uint32(idx)}
	}
	rec := UnmarshalStringRecord(p.strings[i*StringRecordSize:])
	end := uint64(rec.Offset) + uint64(rec.Length)
	if end > uint64(len(p.stringBytes)) {
		return "", &InvalidStringError{Index: uint32(idx)}
	}
	b := p.stringBytes[rec.Offset:end]
	if !utf8.Valid(b) {
		return "", &InvalidStringError{Index: uint32(idx)}
	}
	return string(b), nil
}

// RangeAt returns the start address of the idx-th range.
func (p *Parsed) RangeAt(idx int) symcache.RelativeAddress {
	e := leUint32(p.ranges[idx*RangeRecordSize:])
	return symcache.RelativeAddress(e)
}

// RangeSourceLocAt returns the SourceLocation index the idx-th range maps
// to.
func (p *Parsed) RangeSourceLocAt(idx int) symcache.Index {
	return symcache.Index(leUint32(p.rangeSourceLocs[idx*RangeSourceLocSize:]))
}

func leUint32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
