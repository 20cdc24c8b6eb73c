// Package mmapfile memory-maps a file read-only for zero-copy access.
// It exists to satisfy the squashfs reader's own unrealized intent
// ("TODO: maybe mmap instead of seeking") for the lookup package, which
// wants the whole cache resident without an explicit read.
package mmapfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-only memory mapping of a file on disk.
type File struct {
	data   []byte
	closed bool
}

// Open maps path read-only and returns a File exposing its bytes. The
// mapping is released by calling Close.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()
	if size == 0 {
		return &File{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &File{data: data}, nil
}

// Bytes returns the mapped file contents. The slice is valid until Close.
func (f *File) Bytes() []byte { return f.data }

// Close unmaps the file. It is safe to call more than once.
func (f *File) Close() error {
	if f.closed || f.data == nil {
		f.closed = true
		return nil
	}
	f.closed = true
	return unix.Munmap(f.data)
}
