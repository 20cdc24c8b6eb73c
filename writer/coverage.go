package writer

import "github.com/symc/symcache"

// addressSet tracks which relative addresses public-symbol fill (spec
// §4.2 step 2) must leave alone: the exact address of every line record
// (added as points) and the span of every sized public symbol already
// emitted (added as ranges). A line record covers only its own address;
// an address between two line records is not treated as covered. It
// favors simplicity over asymptotic performance: a writer runs once per
// artifact, off the hot path.
type addressSet struct {
	points []symcache.RelativeAddress
	spans  []addrSpan
}

type addrSpan struct {
	start, end symcache.RelativeAddress // half-open [start, end); end is ignored when unbounded
	unbounded  bool                     // covers every address >= start
}

func (s *addressSet) addPoint(a symcache.RelativeAddress) {
	s.points = append(s.points, a)
}

func (s *addressSet) addRange(start symcache.RelativeAddress, hasEnd bool, end symcache.RelativeAddress) {
	s.spans = append(s.spans, addrSpan{start: start, end: end, unbounded: !hasEnd})
}

func (s *addressSet) contains(a symcache.RelativeAddress) bool {
	for _, p := range s.points {
		if p == a {
			return true
		}
	}
	for _, sp := range s.spans {
		if sp.unbounded {
			if a >= sp.start {
				return true
			}
			continue
		}
		if a >= sp.start && a < sp.end {
			return true
		}
	}
	return false
}
