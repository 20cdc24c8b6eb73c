package symcache

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// ParseDebugId parses the textual debug identifiers produced by common
// debug formats: either the dashed form this package prints
// (e8f35c12-3a21-4e9a-9e21-1234567890ab-7), or the undashed hex blob
// Breakpad MODULE records use (a 32-character UUID immediately followed by
// a variable-length hex appendix, e.g. the "age" field).
func ParseDebugId(s string) (DebugId, error) {
	s = strings.TrimSpace(s)
	if isDashedUUID(s) {
		return parseDashedDebugId(s)
	}
	return parseUndashedDebugId(s)
}

// isDashedUUID reports whether s starts with a standard 8-4-4-4-12 dashed
// UUID (optionally followed by "-<appendix>").
func isDashedUUID(s string) bool {
	return len(s) >= 36 && s[8] == '-' && s[13] == '-' && s[18] == '-' && s[23] == '-'
}

func parseUndashedDebugId(s string) (DebugId, error) {
	if len(s) < 32 {
		return DebugId{}, fmt.Errorf("symcache: debug id %q too short", s)
	}
	uuidHex, rest := s[:32], strings.TrimPrefix(s[32:], "-")
	return assembleDebugId(s, uuidHex, rest)
}

func parseDashedDebugId(s string) (DebugId, error) {
	uuidHex := s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:36]
	rest := strings.TrimPrefix(s[36:], "-")
	return assembleDebugId(s, uuidHex, rest)
}

func assembleDebugId(original, uuidHex, appendixHex string) (DebugId, error) {
	raw, err := hex.DecodeString(uuidHex)
	if err != nil || len(raw) != 16 {
		return DebugId{}, xerrors.Errorf("symcache: parsing debug id %q: %w", original, err)
	}
	var id DebugId
	copy(id.UUID[:], raw)
	if appendixHex != "" {
		appendix, err := strconv.ParseUint(appendixHex, 16, 32)
		if err != nil {
			return DebugId{}, xerrors.Errorf("symcache: parsing debug id appendix %q: %w", original, err)
		}
		id.Appendix = uint32(appendix)
	}
	return id, nil
}
