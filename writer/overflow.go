package writer

// compensateLineOverflow reconstructs monotonic line numbers for lines
// reported modulo 2^16, a quirk of some Breakpad-generating toolchains
// (spec §4.2 step 4). It returns one corrected line number per input
// record, in the same order.
//
// The heuristic: track a running multiple-of-65536 offset. Whenever the
// next raw line number, added to the current offset, would go backwards
// relative to the previous corrected line, assume the toolchain wrapped
// and bump the offset by enough multiples of 65536 to make it monotonic
// again. Addresses outside a function body never go through this path.
func compensateLineOverflow(raw []uint64) []uint64 {
	out := make([]uint64, len(raw))
	const wrap = 1 << 16
	var offset uint64
	var prev uint64
	have := false
	for i, line := range raw {
		adjusted := line + offset
		if have && adjusted < prev {
			diff := prev - adjusted
			k := (diff + wrap - 1) / wrap
			offset += k * wrap
			adjusted = line + offset
		}
		out[i] = adjusted
		prev = adjusted
		have = true
	}
	return out
}
