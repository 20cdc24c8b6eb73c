// Package fixture loads a synthetic writer.DebugSession from YAML,
// grounded in the sibling example repo's internal/config YAML-decode
// pattern. It exists for tests and demos only: no production caller
// should parse real debug objects through this package.
package fixture

import (
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/symc/symcache"
	"github.com/symc/symcache/writer"
)

// Session is a writer.DebugSession backed by a YAML document. The field
// names below are the YAML keys.
type Session struct {
	DebugIDField string     `yaml:"debug_id"`
	ArchField    string     `yaml:"arch"`
	LoadAddr     uint64     `yaml:"load_address"`
	FunctionList []Function `yaml:"functions"`
	SymbolList   []Symbol   `yaml:"symbols"`
}

// Function mirrors writer.FunctionRecord in a YAML-friendly shape.
type Function struct {
	Name     string `yaml:"name"`
	EntryPC  *uint64 `yaml:"entry_pc"`
	Size     *uint64 `yaml:"size"`
	Language string `yaml:"language"`
	Lines    []Line `yaml:"lines"`
}

// Line mirrors writer.LineRecord.
type Line struct {
	Address uint64        `yaml:"address"`
	File    File          `yaml:"file"`
	Line    uint64        `yaml:"line"`
	Inline  []InlineFrame `yaml:"inline_chain"`
}

// File mirrors writer.FileRef.
type File struct {
	CompDir   string `yaml:"comp_dir"`
	Directory string `yaml:"directory"`
	Name      string `yaml:"name"`
}

// InlineFrame mirrors writer.InlineFrame.
type InlineFrame struct {
	FunctionName string `yaml:"function_name"`
	Language     string `yaml:"language"`
	File         File   `yaml:"file"`
	Line         uint64 `yaml:"line"`
}

// Symbol mirrors writer.SymbolRecord.
type Symbol struct {
	Address uint64  `yaml:"address"`
	Size    *uint64 `yaml:"size"`
	Name    string  `yaml:"name"`
}

// Load parses a YAML document into a Session.
func Load(data []byte) (*Session, error) {
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, xerrors.Errorf("fixture: parsing session: %w", err)
	}
	return &s, nil
}

// LoadFile reads and parses a YAML fixture file.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("fixture: reading %s: %w", path, err)
	}
	return Load(data)
}

var languages = map[string]symcache.Language{
	"c":       symcache.LanguageC,
	"cpp":     symcache.LanguageCpp,
	"c++":     symcache.LanguageCpp,
	"rust":    symcache.LanguageRust,
	"swift":   symcache.LanguageSwift,
	"objc":    symcache.LanguageObjC,
	"objcpp":  symcache.LanguageObjCpp,
	"unknown": symcache.LanguageUnknown,
	"":        symcache.LanguageUnknown,
}

func parseLanguage(s string) symcache.Language {
	if lang, ok := languages[s]; ok {
		return lang
	}
	return symcache.LanguageUnknown
}

func (f File) toFileRef() writer.FileRef {
	return writer.FileRef{CompDir: f.CompDir, Directory: f.Directory, Name: f.Name}
}

// DebugId implements writer.DebugSession.
func (s *Session) DebugId() symcache.DebugId {
	id, err := symcache.ParseDebugId(s.DebugIDField)
	if err != nil {
		return symcache.DebugId{}
	}
	return id
}

// Arch implements writer.DebugSession.
func (s *Session) Arch() symcache.Arch {
	arch, ok := symcache.ParseArch(s.ArchField)
	if !ok {
		return symcache.ArchUnknown
	}
	return arch
}

// LoadAddress implements writer.DebugSession.
func (s *Session) LoadAddress() uint64 { return s.LoadAddr }

// Functions implements writer.DebugSession.
func (s *Session) Functions(yield func(writer.FunctionRecord) bool) {
	for _, fn := range s.FunctionList {
		rec := writer.FunctionRecord{
			Name:     fn.Name,
			Language: parseLanguage(fn.Language),
		}
		if fn.EntryPC != nil {
			rec.EntryPC, rec.HasPC = *fn.EntryPC, true
		}
		if fn.Size != nil {
			rec.Size, rec.HasSize = *fn.Size, true
		}
		rec.Lines = make([]writer.LineRecord, len(fn.Lines))
		for i, ln := range fn.Lines {
			chain := make([]writer.InlineFrame, len(ln.Inline))
			for j, fr := range ln.Inline {
				chain[j] = writer.InlineFrame{
					FunctionName: fr.FunctionName,
					Language:     parseLanguage(fr.Language),
					File:         fr.File.toFileRef(),
					Line:         fr.Line,
				}
			}
			rec.Lines[i] = writer.LineRecord{
				Address:     ln.Address,
				File:        ln.File.toFileRef(),
				Line:        ln.Line,
				InlineChain: chain,
			}
		}
		if !yield(rec) {
			return
		}
	}
}

// Symbols implements writer.DebugSession.
func (s *Session) Symbols(yield func(writer.SymbolRecord) bool) {
	for _, sym := range s.SymbolList {
		rec := writer.SymbolRecord{Address: sym.Address, Name: sym.Name}
		if sym.Size != nil {
			rec.Size, rec.HasSize = *sym.Size, true
		}
		if !yield(rec) {
			return
		}
	}
}
