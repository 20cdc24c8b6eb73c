package writer

import "fmt"

// BadSessionError is returned when a DebugSession yields a record that
// violates the writer's input contract: a line outside any function
// range it claims to belong to, or an inline chain deeper than the
// format's maximum.
type BadSessionError struct {
	Reason string
}

func (e *BadSessionError) Error() string {
	return fmt.Sprintf("writer: bad session: %s", e.Reason)
}

// TooLargeError is returned when a table would exceed 2^32-1 rows, a
// string pool would exceed 2^32-1 bytes, or a normalized address would
// not fit in 32 bits.
type TooLargeError struct {
	What string
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("writer: %s exceeds the format's 32-bit limit", e.What)
}

// IoError wraps a failure from the underlying io.WriteSeeker.
type IoError struct {
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("writer: io: %v", e.Err) }
func (e *IoError) Unwrap() error { return e.Err }
