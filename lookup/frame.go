package lookup

import (
	"strings"

	"github.com/symc/symcache"
	"github.com/symc/symcache/internal/format"
)

// Frame is one entry in an inline call chain: the function executing at
// a point, the source file and line (when known), and the function's
// source language. The function name is returned verbatim; demangling
// is the caller's responsibility (spec §4.3, "Frame formatting").
type Frame struct {
	FunctionName string
	File         string
	Line         symcache.LineNumber
	Language     symcache.Language
}

// FrameIter walks the inline chain for one address, innermost frame
// first. It is finite (bounded by the format's maximum inline depth),
// never allocates beyond the strings it returns, and a SymCache handle
// may have any number of FrameIters active concurrently.
//
// Call Next until it returns false, then check Err to distinguish a
// clean end of chain from a Corrupt cache.
type FrameIter struct {
	sc      *SymCache
	addr    symcache.RelativeAddress
	started bool
	done    bool
	next    symcache.Index
	depth   int
	err     error
}

// Next advances the iterator and returns the next frame, or false when
// the chain is exhausted (cleanly, or because of a Corrupt error — check
// Err to tell the two apart).
func (it *FrameIter) Next() (Frame, bool) {
	if it.done {
		return Frame{}, false
	}
	if !it.started {
		it.started = true
		i, ok := it.sc.searchRange(it.addr)
		if !ok {
			it.done = true
			return Frame{}, false
		}
		slIdx := it.sc.parsed.RangeSourceLocAt(i)
		if !slIdx.Valid() {
			it.done = true
			return Frame{}, false
		}
		it.next = slIdx
	}
	if !it.next.Valid() {
		it.done = true
		return Frame{}, false
	}
	if it.depth >= format.MaxInlineDepth {
		it.done = true
		it.err = &CorruptError{Reason: "inline chain exceeds maximum depth"}
		return Frame{}, false
	}
	it.depth++

	sl, err := it.sc.parsed.SourceLocation(it.next)
	if err != nil {
		it.done = true
		it.err = &CorruptError{Reason: err.Error()}
		return Frame{}, false
	}
	frame, err := it.sc.buildFrame(sl)
	if err != nil {
		it.done = true
		it.err = &CorruptError{Reason: err.Error()}
		return Frame{}, false
	}
	it.next = sl.InlinedIntoIdx
	return frame, true
}

// Err returns the error that ended iteration early, or nil if iteration
// either hasn't ended or ended cleanly.
func (it *FrameIter) Err() error { return it.err }

// Frames drains a Lookup into a slice. Frames already produced before a
// Corrupt error remain in the returned slice; the error, if any, is
// returned alongside them.
func Frames(sc *SymCache, addr symcache.RelativeAddress) ([]Frame, error) {
	it := sc.Lookup(addr)
	var frames []Frame
	for {
		f, ok := it.Next()
		if !ok {
			return frames, it.Err()
		}
		frames = append(frames, f)
	}
}

func (sc *SymCache) buildFrame(sl format.SourceLocation) (Frame, error) {
	var fr Frame
	fr.Line = sl.Line
	if sl.FunctionIdx.Valid() {
		fn, err := sc.parsed.Function(sl.FunctionIdx)
		if err != nil {
			return Frame{}, err
		}
		fr.Language = fn.Lang
		if fn.NameIdx.Valid() {
			name, err := sc.parsed.StringAt(fn.NameIdx)
			if err != nil {
				return Frame{}, err
			}
			fr.FunctionName = name
		}
	}
	if sl.FileIdx.Valid() {
		file, err := sc.parsed.File(sl.FileIdx)
		if err != nil {
			return Frame{}, err
		}
		path, err := sc.joinFile(file)
		if err != nil {
			return Frame{}, err
		}
		fr.File = path
	}
	return fr, nil
}

// joinFile concatenates a File's components with a single
// platform-neutral separator, skipping absent or empty parts.
func (sc *SymCache) joinFile(f format.File) (string, error) {
	var parts []string
	for _, idx := range [...]symcache.Index{f.CompDirIdx, f.DirectoryIdx, f.PathNameIdx} {
		if !idx.Valid() {
			continue
		}
		s, err := sc.parsed.StringAt(idx)
		if err != nil {
			return "", err
		}
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "/"), nil
}
