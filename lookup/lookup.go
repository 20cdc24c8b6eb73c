// Package lookup parses a SymCache buffer and resolves relative
// addresses to source locations, reconstructing inline call chains.
package lookup

import (
	"sort"

	"github.com/symc/symcache"
	"github.com/symc/symcache/internal/format"
	"github.com/symc/symcache/internal/mmapfile"
)

// SymCache is an immutable, parsed view of a SymCache buffer. It is safe
// for concurrent use: any number of goroutines may call Lookup on the
// same handle without synchronization, since lookup never mutates state.
type SymCache struct {
	parsed *format.Parsed
	mapped *mmapfile.File // nil unless opened via OpenFile
}

// Open parses buf in place and returns a handle borrowing from it. buf
// must outlive the returned SymCache and every Frame string derived from
// it.
func Open(buf []byte) (*SymCache, error) {
	p, err := format.Open(buf)
	if err != nil {
		return nil, err
	}
	return &SymCache{parsed: p}, nil
}

// OpenFile memory-maps path and parses it, so the kernel pages the
// backing data in on demand instead of it being read eagerly. This
// realizes the teacher's own "maybe mmap instead of seeking" TODO from
// its squashfs reader.
func OpenFile(path string) (*SymCache, error) {
	mf, err := mmapfile.Open(path)
	if err != nil {
		return nil, err
	}
	sc, err := Open(mf.Bytes())
	if err != nil {
		mf.Close()
		return nil, err
	}
	sc.mapped = mf
	return sc, nil
}

// Close unmaps the backing file, if this handle owns one. It is a no-op
// for handles created with Open. After Close, every Frame string
// previously returned by this handle is invalid to read.
func (sc *SymCache) Close() error {
	if sc.mapped == nil {
		return nil
	}
	return sc.mapped.Close()
}

// DebugId returns the debug id recorded in the cache's header.
func (sc *SymCache) DebugId() symcache.DebugId { return sc.parsed.Header.DebugId() }

// Arch returns the architecture recorded in the cache's header.
func (sc *SymCache) Arch() symcache.Arch { return symcache.Arch(sc.parsed.Header.Arch) }

// NumFiles, NumFunctions and NumRanges expose the table sizes recorded
// in the header, mainly useful for inspection tooling.
func (sc *SymCache) NumFiles() int     { return sc.parsed.NumFiles() }
func (sc *SymCache) NumFunctions() int { return sc.parsed.NumFunctions() }
func (sc *SymCache) NumRanges() int    { return sc.parsed.NumRanges() }

// Lookup returns an iterator over the inline call chain covering addr,
// innermost frame first. The returned iterator is independent of any
// other in-flight lookup on the same handle.
func (sc *SymCache) Lookup(addr symcache.RelativeAddress) *FrameIter {
	return &FrameIter{sc: sc, addr: addr}
}

// searchRange finds the largest range index i with ranges[i] <= addr
// (spec §4.3 step 1), returning ok=false if addr precedes every range.
func (sc *SymCache) searchRange(addr symcache.RelativeAddress) (int, bool) {
	n := sc.parsed.NumRanges()
	i := sort.Search(n, func(i int) bool {
		return sc.parsed.RangeAt(i) > addr
	})
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}
