// Package writer builds a SymCache byte buffer from an abstract debug
// session. It never parses DWARF, Breakpad, or any other debug format
// itself — see the DebugSession interface below for the boundary.
package writer

import "github.com/symc/symcache"

// DebugSession is the external collaborator this package consumes. A
// concrete implementation wraps one debug format (DWARF, Breakpad text
// symbols, a Mach-O symbol table, ...); this package only ever sees the
// interface.
type DebugSession interface {
	// DebugId identifies the binary this session describes.
	DebugId() symcache.DebugId
	// Arch is the binary's architecture.
	Arch() symcache.Arch
	// LoadAddress is subtracted from every absolute address the session
	// reports, yielding a RelativeAddress.
	LoadAddress() uint64

	// Functions streams every function the session knows about, richest
	// first within a function (its own line records).
	Functions(yield func(FunctionRecord) bool)
	// Symbols streams public symbols used to fill gaps left by Functions.
	Symbols(yield func(SymbolRecord) bool)
}

// FileRef names a source file as up to three optional components; the
// logical path is their concatenation with a platform-neutral separator.
type FileRef struct {
	CompDir   string
	Directory string
	Name      string
}

// Empty reports whether every component of the reference is unset.
func (f FileRef) Empty() bool {
	return f.CompDir == "" && f.Directory == "" && f.Name == ""
}

// InlineFrame is one level of a LineRecord's inline chain, listed
// innermost to outermost. FunctionName and Language name the inlined
// function executing at that level; File and Line give the call site of
// that function in the next function out (the next entry's, or the
// enclosing FunctionRecord's for the last entry).
type InlineFrame struct {
	FunctionName string
	Language     symcache.Language
	File         FileRef
	Line         uint64
}

// LineRecord associates one absolute address within a function with a
// file/line and, if the address lies in inlined code, the chain of inlined
// functions executing there. File and Line are the generated-code position
// of the innermost function.
type LineRecord struct {
	Address     uint64
	File        FileRef
	Line        uint64
	InlineChain []InlineFrame
}

// FunctionRecord is one function as reported by the debug session: its
// identity, optionally its size, and its line table.
type FunctionRecord struct {
	Name     string
	EntryPC  uint64
	HasPC    bool
	Size     uint64
	HasSize  bool
	Language symcache.Language
	Lines    []LineRecord
}

// SymbolRecord is a minimal public symbol, used to fill address spans
// that no FunctionRecord covers.
type SymbolRecord struct {
	Address uint64
	Size    uint64
	HasSize bool
	Name    string
}
