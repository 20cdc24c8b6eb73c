package format

import "fmt"

// BadMagicError is returned when the first four bytes are not the SymCache
// magic (and not its byte-swapped form either).
type BadMagicError struct {
	Got uint32
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("format: bad magic %#08x, not a SymCache file", e.Got)
}

// EndianMismatchError is returned when the magic is recognized only in its
// byte-swapped form. Readers never swap bytes to recover from this; the
// host is assumed little-endian.
type EndianMismatchError struct{}

func (e *EndianMismatchError) Error() string {
	return "format: magic matches the byte-swapped form; file was written on a big-endian host"
}

// WrongVersionError is returned when the header's version field is not the
// one version this package understands.
type WrongVersionError struct {
	Got uint32
}

func (e *WrongVersionError) Error() string {
	return fmt.Sprintf("format: unsupported version %d, want %d", e.Got, Version)
}

// TruncatedError is returned when the buffer ends before a table declared
// in the header.
type TruncatedError struct {
	Table string
	Want  int
	Have  int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("format: truncated %s table: need %d bytes, have %d", e.Table, e.Want, e.Have)
}

// BadAlignmentError is returned when a table does not begin at an 8-byte
// aligned offset relative to the start of the buffer.
type BadAlignmentError struct {
	Table  string
	Offset int
}

func (e *BadAlignmentError) Error() string {
	return fmt.Sprintf("format: %s table at offset %d is not 8-byte aligned", e.Table, e.Offset)
}

// InvalidStringError is returned by StringAt when a string descriptor's
// (offset, length) falls outside the string pool or is not valid UTF-8.
type InvalidStringError struct {
	Index uint32
}

func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("format: invalid string at index %d", e.Index)
}
