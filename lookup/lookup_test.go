package lookup

import (
	"context"
	"testing"

	"github.com/symc/symcache"
	"github.com/symc/symcache/internal/format"
)

// buildCache assembles a minimal, valid SymCache buffer by hand: one
// file, two functions, a two-level inline chain, and two ranges. It
// mirrors the on-disk layout directly rather than going through the
// writer package, so lookup tests stay independent of writer bugs.
func buildCache(t *testing.T) []byte {
	t.Helper()

	strs := []string{"main.c", "inner()", "outer()"}
	var pool []byte
	descs := make([]format.StringRecord, len(strs))
	for i, s := range strs {
		descs[i] = format.StringRecord{Offset: uint32(len(pool)), Length: uint32(len(s))}
		pool = append(pool, s...)
	}
	fileNameIdx, innerNameIdx, outerNameIdx := symcache.Index(0), symcache.Index(1), symcache.Index(2)

	files := []format.File{
		{CompDirIdx: symcache.IndexAbsent, DirectoryIdx: symcache.IndexAbsent, PathNameIdx: fileNameIdx},
	}
	fileIdx := symcache.Index(0)

	functions := []format.Function{
		{NameIdx: innerNameIdx, HasPC: false, Lang: symcache.LanguageC},
		{NameIdx: outerNameIdx, HasPC: false, Lang: symcache.LanguageC},
	}
	innerFn, outerFn := symcache.Index(0), symcache.Index(1)

	sourceLocations := []format.SourceLocation{
		{FileIdx: fileIdx, Line: 20, FunctionIdx: outerFn, InlinedIntoIdx: symcache.IndexAbsent}, // idx 0: outer
		{FileIdx: fileIdx, Line: 10, FunctionIdx: innerFn, InlinedIntoIdx: 0},                    // idx 1: inner, inlined into outer
	}
	innerSL := symcache.Index(1)

	ranges := []uint32{0x1000, 0x2000}
	rangeSL := []uint32{uint32(innerSL), uint32(symcache.IndexAbsent)}

	h := format.Header{
		Magic:              format.Magic,
		Version:            format.Version,
		Arch:               uint8(symcache.ArchAmd64),
		NumStrings:         uint32(len(descs)),
		NumFiles:           uint32(len(files)),
		NumFunctions:       uint32(len(functions)),
		NumSourceLocations: uint32(len(sourceLocations)),
		NumRanges:          uint32(len(ranges)),
		StringBytes:        uint32(len(pool)),
	}

	var buf []byte
	hb := make([]byte, format.HeaderSize)
	h.Marshal(hb)
	buf = append(buf, hb...)

	writeSection := func(n, size int, fill func(b []byte, i int)) {
		b := make([]byte, n*size)
		for i := 0; i < n; i++ {
			fill(b[i*size:], i)
		}
		buf = append(buf, b...)
		if p := format.PadTo8(len(b)); p > 0 {
			buf = append(buf, make([]byte, p)...)
		}
	}
	writeSection(len(files), format.FileRecordSize, func(b []byte, i int) { format.MarshalFile(b, files[i]) })
	writeSection(len(functions), format.FunctionRecordSize, func(b []byte, i int) { format.MarshalFunction(b, functions[i]) })
	writeSection(len(sourceLocations), format.SourceLocationRecordSize, func(b []byte, i int) {
		format.MarshalSourceLocation(b, sourceLocations[i])
	})
	writeSection(len(descs), format.StringRecordSize, func(b []byte, i int) { format.MarshalStringRecord(b, descs[i]) })
	writeSection(len(ranges), format.RangeRecordSize, func(b []byte, i int) {
		le32(b, ranges[i])
	})
	writeSection(len(rangeSL), format.RangeSourceLocSize, func(b []byte, i int) {
		le32(b, rangeSL[i])
	})
	buf = append(buf, pool...)

	return buf
}

func le32(b []byte, v uint32) {
	_ = b[3]
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

func TestLookupInlineChain(t *testing.T) {
	buf := buildCache(t)
	sc, err := Open(buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	frames, err := Frames(sc, 0x1500)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}
	if frames[0].FunctionName != "inner()" {
		t.Errorf("frames[0].FunctionName = %q, want inner()", frames[0].FunctionName)
	}
	if frames[0].Line != 10 {
		t.Errorf("frames[0].Line = %d, want 10", frames[0].Line)
	}
	if frames[1].FunctionName != "outer()" {
		t.Errorf("frames[1].FunctionName = %q, want outer()", frames[1].FunctionName)
	}
	if frames[1].Line != 20 {
		t.Errorf("frames[1].Line = %d, want 20", frames[1].Line)
	}
	for _, f := range frames {
		if f.File != "main.c" {
			t.Errorf("File = %q, want main.c", f.File)
		}
	}
}

func TestLookupBelowAllRanges(t *testing.T) {
	sc, err := Open(buildCache(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	frames, err := Frames(sc, 0x10)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("len(frames) = %d, want 0", len(frames))
	}
}

func TestLookupAtTerminator(t *testing.T) {
	sc, err := Open(buildCache(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	frames, err := Frames(sc, 0x2000)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("len(frames) = %d, want 0 (terminator range carries no info)", len(frames))
	}
}

func TestLookupHeaderFields(t *testing.T) {
	sc, err := Open(buildCache(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sc.Arch() != symcache.ArchAmd64 {
		t.Errorf("Arch() = %v, want ArchAmd64", sc.Arch())
	}
	if sc.NumFiles() != 1 {
		t.Errorf("NumFiles() = %d, want 1", sc.NumFiles())
	}
	if sc.NumFunctions() != 2 {
		t.Errorf("NumFunctions() = %d, want 2", sc.NumFunctions())
	}
}

func TestBatchResolve(t *testing.T) {
	sc, err := Open(buildCache(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	addrs := []symcache.RelativeAddress{0x1500, 0x10, 0x1999}
	results, err := BatchResolve(context.Background(), sc, addrs, 2)
	if err != nil {
		t.Fatalf("BatchResolve: %v", err)
	}
	if len(results) != len(addrs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(addrs))
	}
	if len(results[0]) != 2 {
		t.Errorf("results[0] len = %d, want 2", len(results[0]))
	}
	if len(results[1]) != 0 {
		t.Errorf("results[1] len = %d, want 0", len(results[1]))
	}
	if len(results[2]) != 2 {
		t.Errorf("results[2] len = %d, want 2", len(results[2]))
	}
}
