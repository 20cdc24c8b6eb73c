package writer

import (
	"sort"

	"github.com/symc/symcache"
	"github.com/symc/symcache/internal/format"
)

// maxInlineDepth is format.MaxInlineDepth, the longest InlineChain a line
// record may carry before ingestion rejects it.
const maxInlineDepth = format.MaxInlineDepth

// provisionalRange is a (address, source_location) pair before sorting,
// deduplication and final index resolution.
type provisionalRange struct {
	address symcache.RelativeAddress
	slIdx   symcache.Index
	// rich reports whether slIdx's SourceLocation carries both a file and
	// a line — used to break ties in favor of DWARF-derived data over
	// public-symbol fill (spec §4.2 step 3, "DWARF wins").
	rich bool
}

// Writer accumulates a SymCache's tables from a DebugSession and
// produces the final byte buffer. It is single-use and single-threaded:
// build one, call Build once, discard it.
type Writer struct {
	debugID symcache.DebugId
	arch    symcache.Arch

	strings   *stringIntern
	files     *fileIntern
	functions *functionIntern

	sourceLocations []format.SourceLocation
	ranges          []provisionalRange

	// covered holds the address of every ingested line record and the
	// span of every sized public symbol already emitted; public-symbol
	// fill skips a symbol whose address is in it.
	covered addressSet
}

// New creates an empty Writer. Build populates it from a session,
// including the session's debug id and architecture.
func New() *Writer {
	strings := newStringIntern()
	return &Writer{
		strings:   strings,
		files:     newFileIntern(strings),
		functions: newFunctionIntern(strings),
	}
}

// Build runs the first four pipeline steps against session (ingestion
// with line-overflow compensation, public-symbol fill, range sort and
// dedup) and leaves the Writer ready for Finish, which serializes. It is
// an error to call Build more than once.
func (w *Writer) Build(session DebugSession) error {
	w.debugID = session.DebugId()
	w.arch = session.Arch()
	loadAddr := session.LoadAddress()

	if err := w.ingestFunctions(session, loadAddr); err != nil {
		return err
	}
	if err := w.fillFromSymbols(session, loadAddr); err != nil {
		return err
	}
	w.sortAndDedupRanges()
	return nil
}

func (w *Writer) normalizeAddress(abs, loadAddr uint64) (symcache.RelativeAddress, error) {
	if abs < loadAddr {
		return 0, &BadSessionError{Reason: "address below load address"}
	}
	rel := abs - loadAddr
	if rel > 0xFFFFFFFF {
		return 0, &TooLargeError{What: "relative address"}
	}
	return symcache.RelativeAddress(rel), nil
}

// ingestFunctions implements spec §4.2 step 1.
func (w *Writer) ingestFunctions(session DebugSession, loadAddr uint64) error {
	var ingestErr error
	session.Functions(func(fn FunctionRecord) bool {
		entryPC, hasPC := symcache.RelativeAddress(0), false
		if fn.HasPC {
			pc, err := w.normalizeAddress(fn.EntryPC, loadAddr)
			if err != nil {
				ingestErr = err
				return false
			}
			entryPC, hasPC = pc, true
		}
		fnIdx := w.functions.Intern(fn.Name, entryPC, hasPC, fn.Language)

		rawLines := make([]uint64, len(fn.Lines))
		for i, lr := range fn.Lines {
			rawLines[i] = lr.Line
		}
		corrected := compensateLineOverflow(rawLines)

		for i, lr := range fn.Lines {
			if fn.HasPC && (lr.Address < fn.EntryPC || (fn.HasSize && lr.Address >= fn.EntryPC+fn.Size)) {
				ingestErr = &BadSessionError{Reason: "line record outside its function"}
				return false
			}
			addr, err := w.normalizeAddress(lr.Address, loadAddr)
			if err != nil {
				ingestErr = err
				return false
			}
			if len(lr.InlineChain) > maxInlineDepth {
				ingestErr = &BadSessionError{Reason: "inline chain exceeds maximum depth"}
				return false
			}
			leafIdx, err := w.buildInlineChain(fnIdx, lr.File, corrected[i], lr.InlineChain)
			if err != nil {
				ingestErr = err
				return false
			}
			w.covered.addPoint(addr)
			w.ranges = append(w.ranges, provisionalRange{address: addr, slIdx: leafIdx, rich: !lr.File.Empty() && corrected[i] != 0})
		}
		return true
	})
	return ingestErr
}

// buildInlineChain materializes one SourceLocation per frame in the
// inline chain and links each to the next outward via InlinedIntoIdx,
// returning the leaf's index (spec §4.2 step 1).
//
// The line record's own file/line is the actual generated-code position
// (what .debug_line-equivalent data reports regardless of inlining); its
// function is the innermost name in chain, since that is the function
// logically executing there. Each chain entry in turn records the call
// site one level further out — its File/Line become that outer frame's
// location, and its function is the next name out, or enclosingFn once
// the chain is exhausted.
func (w *Writer) buildInlineChain(enclosingFn symcache.Index, leafFile FileRef, leafLine uint64, chain []InlineFrame) (symcache.Index, error) {
	type frame struct {
		fn   symcache.Index
		file symcache.Index
		line symcache.LineNumber
	}

	n := len(chain)
	frames := make([]frame, n+1)

	leafFn := enclosingFn
	if n > 0 {
		leafFn = w.functions.Intern(chain[0].FunctionName, 0, false, chain[0].Language)
	}
	frames[0] = frame{fn: leafFn, file: w.files.InternOptional(leafFile), line: symcache.LineNumber(leafLine)}

	for i := 0; i < n; i++ {
		fnIdx := enclosingFn
		if i+1 < n {
			fnIdx = w.functions.Intern(chain[i+1].FunctionName, 0, false, chain[i+1].Language)
		}
		frames[i+1] = frame{
			fn:   fnIdx,
			file: w.files.InternOptional(chain[i].File),
			line: symcache.LineNumber(chain[i].Line),
		}
	}

	// Create records outermost-first so each inner frame can reference
	// the already-assigned index of the frame it was inlined into.
	indices := make([]symcache.Index, len(frames))
	nextOuter := symcache.IndexAbsent
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		idx := symcache.Index(len(w.sourceLocations))
		w.sourceLocations = append(w.sourceLocations, format.SourceLocation{
			FileIdx:        f.file,
			Line:           f.line,
			FunctionIdx:    f.fn,
			InlinedIntoIdx: nextOuter,
		})
		indices[i] = idx
		nextOuter = idx
	}
	return indices[0], nil
}

// fillFromSymbols implements spec §4.2 step 2.
func (w *Writer) fillFromSymbols(session DebugSession, loadAddr uint64) error {
	var fillErr error
	session.Symbols(func(sym SymbolRecord) bool {
		addr, err := w.normalizeAddress(sym.Address, loadAddr)
		if err != nil {
			fillErr = err
			return false
		}
		if w.covered.contains(addr) {
			return true
		}
		fnIdx := w.functions.Intern(sym.Name, addr, true, symcache.LanguageUnknown)
		slIdx := symcache.Index(len(w.sourceLocations))
		w.sourceLocations = append(w.sourceLocations, format.SourceLocation{
			FileIdx:        symcache.IndexAbsent,
			Line:           0,
			FunctionIdx:    fnIdx,
			InlinedIntoIdx: symcache.IndexAbsent,
		})
		w.ranges = append(w.ranges, provisionalRange{address: addr, slIdx: slIdx, rich: false})

		var end symcache.RelativeAddress
		if sym.HasSize {
			e, err := w.normalizeAddress(sym.Address+sym.Size, loadAddr)
			if err != nil {
				fillErr = err
				return false
			}
			end = e
			if !w.covered.contains(end) {
				w.ranges = append(w.ranges, provisionalRange{address: end, slIdx: symcache.IndexAbsent, rich: false})
			}
			// A sizeless symbol claims no span: the next range ends it,
			// and later symbols above it are still filled in.
			w.covered.addRange(addr, true, end)
		}
		return true
	})
	return fillErr
}

// sortAndDedupRanges implements spec §4.2 step 3.
func (w *Writer) sortAndDedupRanges() {
	sort.SliceStable(w.ranges, func(i, j int) bool {
		return w.ranges[i].address < w.ranges[j].address
	})

	deduped := w.ranges[:0]
	for _, r := range w.ranges {
		if n := len(deduped); n > 0 {
			last := deduped[n-1]
			if last.address == r.address {
				// Same address: keep the richer entry (DWARF over
				// public-symbol fill).
				if r.rich && !last.rich {
					deduped[n-1] = r
				}
				continue
			}
			if last.slIdx == r.slIdx {
				// Same source location as immediately prior range:
				// coalesce by dropping the later, redundant entry.
				continue
			}
		}
		deduped = append(deduped, r)
	}
	w.ranges = deduped
}
