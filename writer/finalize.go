package writer

import (
	"encoding/binary"
	"io"

	"github.com/google/renameio"
	"github.com/orcaman/writerseeker"

	"github.com/symc/symcache"
	"github.com/symc/symcache/internal/format"
)

// Finish serializes the accumulated tables into a complete SymCache
// buffer (spec §4.2 step 5). It mirrors squashfs.Writer.Flush: write a
// placeholder header, stream every table in on-disk order padding each
// to 8 bytes, then seek back and patch the header with final counts.
func (w *Writer) Finish() ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	if err := w.writeTo(ws); err != nil {
		return nil, err
	}
	r, err := ws.Reader()
	if err != nil {
		return nil, &IoError{Err: err}
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, &IoError{Err: err}
	}
	return buf, nil
}

// WriteFile serializes the cache and writes it to path atomically (a
// temp file renamed into place), so a reader never observes a partially
// written file.
func (w *Writer) WriteFile(path string) error {
	buf, err := w.Finish()
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf, 0o644); err != nil {
		return &IoError{Err: err}
	}
	return nil
}

func (w *Writer) writeTo(ws io.WriteSeeker) error {
	if err := checkTableSizes(w); err != nil {
		return err
	}

	if _, err := ws.Write(make([]byte, format.HeaderSize)); err != nil {
		return &IoError{Err: err}
	}

	if err := writeTable(ws, len(w.files.order), format.FileRecordSize, func(b []byte, i int) {
		key := w.files.order[i]
		format.MarshalFile(b, format.File{CompDirIdx: key.compDir, DirectoryIdx: key.directory, PathNameIdx: key.name})
	}); err != nil {
		return err
	}

	if err := writeTable(ws, len(w.functions.order), format.FunctionRecordSize, func(b []byte, i int) {
		key := w.functions.order[i]
		format.MarshalFunction(b, format.Function{NameIdx: key.nameIdx, EntryPC: symcache.RelativeAddress(key.entryPC), HasPC: key.hasPC, Lang: key.language})
	}); err != nil {
		return err
	}

	if err := writeTable(ws, len(w.sourceLocations), format.SourceLocationRecordSize, func(b []byte, i int) {
		format.MarshalSourceLocation(b, w.sourceLocations[i])
	}); err != nil {
		return err
	}

	stringBytes, descriptors := packStrings(w.strings.order)
	if uint64(len(stringBytes)) > 0xFFFFFFFF {
		return &TooLargeError{What: "string pool"}
	}
	if err := writeTable(ws, len(descriptors), format.StringRecordSize, func(b []byte, i int) {
		format.MarshalStringRecord(b, descriptors[i])
	}); err != nil {
		return err
	}

	if err := writeTable(ws, len(w.ranges), format.RangeRecordSize, func(b []byte, i int) {
		binary.LittleEndian.PutUint32(b, uint32(w.ranges[i].address))
	}); err != nil {
		return err
	}

	if err := writeTable(ws, len(w.ranges), format.RangeSourceLocSize, func(b []byte, i int) {
		binary.LittleEndian.PutUint32(b, uint32(w.ranges[i].slIdx))
	}); err != nil {
		return err
	}

	if _, err := ws.Write(stringBytes); err != nil {
		return &IoError{Err: err}
	}

	h := format.Header{
		Magic:              format.Magic,
		Version:            format.Version,
		DebugID:            w.debugID.Bytes(),
		Arch:               uint8(w.arch),
		NumStrings:         uint32(len(descriptors)),
		NumFiles:           uint32(len(w.files.order)),
		NumFunctions:       uint32(len(w.functions.order)),
		NumSourceLocations: uint32(len(w.sourceLocations)),
		NumRanges:          uint32(len(w.ranges)),
		StringBytes:        uint32(len(stringBytes)),
		RangeThreshold:     0,
	}
	hb := make([]byte, format.HeaderSize)
	h.Marshal(hb)
	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return &IoError{Err: err}
	}
	if _, err := ws.Write(hb); err != nil {
		return &IoError{Err: err}
	}
	return nil
}

func checkTableSizes(w *Writer) error {
	const max = 0xFFFFFFFF
	switch {
	case len(w.files.order) > max:
		return &TooLargeError{What: "files table"}
	case len(w.functions.order) > max:
		return &TooLargeError{What: "functions table"}
	case len(w.sourceLocations) > max:
		return &TooLargeError{What: "source_locations table"}
	case len(w.strings.order) > max:
		return &TooLargeError{What: "strings table"}
	case len(w.ranges) > max:
		return &TooLargeError{What: "ranges table"}
	}
	return nil
}

// writeTable writes count fixed-size records produced by fill, then pads
// the section to an 8-byte boundary.
func writeTable(w io.Writer, count, recordSize int, fill func(b []byte, i int)) error {
	b := make([]byte, count*recordSize)
	for i := 0; i < count; i++ {
		fill(b[i*recordSize:], i)
	}
	if _, err := w.Write(b); err != nil {
		return &IoError{Err: err}
	}
	if pad := format.PadTo8(len(b)); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return &IoError{Err: err}
		}
	}
	return nil
}

// packStrings concatenates strs in order into one byte pool and returns
// the pool alongside a parallel slice of (offset, length) descriptors.
func packStrings(strs []string) ([]byte, []format.StringRecord) {
	var total int
	for _, s := range strs {
		total += len(s)
	}
	pool := make([]byte, 0, total)
	descriptors := make([]format.StringRecord, len(strs))
	for i, s := range strs {
		descriptors[i] = format.StringRecord{Offset: uint32(len(pool)), Length: uint32(len(s))}
		pool = append(pool, s...)
	}
	return pool, descriptors
}
