package format

import (
	"encoding/binary"

	"github.com/symc/symcache"
)

// absentIndex is the wire encoding of symcache.IndexAbsent.
const absentIndex uint32 = uint32(symcache.IndexAbsent)

func indexOrAbsent(idx uint32) symcache.Index {
	return symcache.Index(idx)
}

// File is a row of the files table: three optional string indices that,
// concatenated with a platform-neutral separator, form the source path.
type File struct {
	CompDirIdx   symcache.Index
	DirectoryIdx symcache.Index
	PathNameIdx  symcache.Index
}

// UnmarshalFile reads a File record from b, which must be at least
// FileRecordSize bytes.
func UnmarshalFile(b []byte) File {
	_ = b[FileRecordSize-1]
	e := binary.LittleEndian
	return File{
		CompDirIdx:   indexOrAbsent(e.Uint32(b[0:])),
		DirectoryIdx: indexOrAbsent(e.Uint32(b[4:])),
		PathNameIdx:  indexOrAbsent(e.Uint32(b[8:])),
	}
}

func MarshalFile(b []byte, f File) {
	_ = b[FileRecordSize-1]
	e := binary.LittleEndian
	e.PutUint32(b[0:], uint32(f.CompDirIdx))
	e.PutUint32(b[4:], uint32(f.DirectoryIdx))
	e.PutUint32(b[8:], uint32(f.PathNameIdx))
}

// Function is a row of the functions table.
type Function struct {
	NameIdx symcache.Index
	EntryPC symcache.RelativeAddress
	HasPC   bool
	Lang    symcache.Language
}

func UnmarshalFunction(b []byte) Function {
	_ = b[FunctionRecordSize-1]
	e := binary.LittleEndian
	pc := e.Uint32(b[4:])
	return Function{
		NameIdx: indexOrAbsent(e.Uint32(b[0:])),
		EntryPC: symcache.RelativeAddress(pc),
		HasPC:   pc != absentIndex,
		Lang:    symcache.Language(b[8]),
	}
}

func MarshalFunction(b []byte, f Function) {
	_ = b[FunctionRecordSize-1]
	e := binary.LittleEndian
	e.PutUint32(b[0:], uint32(f.NameIdx))
	pc := uint32(f.EntryPC)
	if !f.HasPC {
		pc = absentIndex
	}
	e.PutUint32(b[4:], pc)
	b[8] = byte(f.Lang)
	b[9], b[10], b[11] = 0, 0, 0
}

// SourceLocation represents one frame at one point: a file, a line, a
// function, and (if this frame resulted from inlining) the index of the
// SourceLocation it was inlined into.
type SourceLocation struct {
	FileIdx        symcache.Index
	Line           symcache.LineNumber
	FunctionIdx    symcache.Index
	InlinedIntoIdx symcache.Index
}

func UnmarshalSourceLocation(b []byte) SourceLocation {
	_ = b[SourceLocationRecordSize-1]
	e := binary.LittleEndian
	return SourceLocation{
		FileIdx:        indexOrAbsent(e.Uint32(b[0:])),
		Line:           symcache.LineNumber(e.Uint32(b[4:])),
		FunctionIdx:    indexOrAbsent(e.Uint32(b[8:])),
		InlinedIntoIdx: indexOrAbsent(e.Uint32(b[12:])),
	}
}

func MarshalSourceLocation(b []byte, sl SourceLocation) {
	_ = b[SourceLocationRecordSize-1]
	e := binary.LittleEndian
	e.PutUint32(b[0:], uint32(sl.FileIdx))
	e.PutUint32(b[4:], uint32(sl.Line))
	e.PutUint32(b[8:], uint32(sl.FunctionIdx))
	e.PutUint32(b[12:], uint32(sl.InlinedIntoIdx))
}

// StringRecord is a (offset, length) pointer into the string byte pool.
type StringRecord struct {
	Offset uint32
	Length uint32
}

func UnmarshalStringRecord(b []byte) StringRecord {
	_ = b[StringRecordSize-1]
	e := binary.LittleEndian
	return StringRecord{Offset: e.Uint32(b[0:]), Length: e.Uint32(b[4:])}
}

func MarshalStringRecord(b []byte, s StringRecord) {
	_ = b[StringRecordSize-1]
	e := binary.LittleEndian
	e.PutUint32(b[0:], s.Offset)
	e.PutUint32(b[4:], s.Length)
}
