package writer

import "github.com/symc/symcache"

// stringIntern maps byte sequences to a dense, insertion-ordered Index.
// Insertion order is preserved so that writing the same session twice
// produces byte-identical output (testable property 6 in the spec).
type stringIntern struct {
	index map[string]symcache.Index
	order []string
}

func newStringIntern() *stringIntern {
	return &stringIntern{index: make(map[string]symcache.Index)}
}

// Intern returns the Index for s, assigning a new one if s hasn't been
// seen before. The empty string still gets a real row: callers that want
// "absent" use InternOptional instead.
func (si *stringIntern) Intern(s string) symcache.Index {
	if idx, ok := si.index[s]; ok {
		return idx
	}
	idx := symcache.Index(len(si.order))
	si.index[s] = idx
	si.order = append(si.order, s)
	return idx
}

// InternOptional interns s unless it is empty, in which case it returns
// the absent sentinel. Two absent values always compare equal.
func (si *stringIntern) InternOptional(s string) symcache.Index {
	if s == "" {
		return symcache.IndexAbsent
	}
	return si.Intern(s)
}

func (si *stringIntern) Len() int { return len(si.order) }

type fileKey struct {
	compDir, directory, name symcache.Index
}

// fileIntern deduplicates File rows by their (comp_dir, directory,
// path_name) triple of already-interned string indices.
type fileIntern struct {
	strings *stringIntern
	index   map[fileKey]symcache.Index
	order   []fileKey
}

func newFileIntern(strings *stringIntern) *fileIntern {
	return &fileIntern{strings: strings, index: make(map[fileKey]symcache.Index)}
}

func (fi *fileIntern) Intern(f FileRef) symcache.Index {
	key := fileKey{
		compDir:   fi.strings.InternOptional(f.CompDir),
		directory: fi.strings.InternOptional(f.Directory),
		name:      fi.strings.InternOptional(f.Name),
	}
	if idx, ok := fi.index[key]; ok {
		return idx
	}
	idx := symcache.Index(len(fi.order))
	fi.index[key] = idx
	fi.order = append(fi.order, key)
	return idx
}

// InternOptional interns f unless it has no components set, in which
// case it returns the absent sentinel.
func (fi *fileIntern) InternOptional(f FileRef) symcache.Index {
	if f.Empty() {
		return symcache.IndexAbsent
	}
	return fi.Intern(f)
}

func (fi *fileIntern) Len() int { return len(fi.order) }

type functionKey struct {
	nameIdx  symcache.Index
	entryPC  uint32
	hasPC    bool
	language symcache.Language
}

// functionIntern deduplicates Function rows by (name, entry_pc, lang).
type functionIntern struct {
	strings *stringIntern
	index   map[functionKey]symcache.Index
	order   []functionKey
}

func newFunctionIntern(strings *stringIntern) *functionIntern {
	return &functionIntern{strings: strings, index: make(map[functionKey]symcache.Index)}
}

// Intern interns a function named name with an optional entry_pc and a
// language tag, returning its dense Index.
func (fni *functionIntern) Intern(name string, entryPC symcache.RelativeAddress, hasPC bool, lang symcache.Language) symcache.Index {
	key := functionKey{
		nameIdx:  fni.strings.InternOptional(name),
		entryPC:  uint32(entryPC),
		hasPC:    hasPC,
		language: lang,
	}
	if idx, ok := fni.index[key]; ok {
		return idx
	}
	idx := symcache.Index(len(fni.order))
	fni.index[key] = idx
	fni.order = append(fni.order, key)
	return idx
}

func (fni *functionIntern) Len() int { return len(fni.order) }
