package writer

import (
	"strings"
	"testing"

	"github.com/symc/symcache"
	"github.com/symc/symcache/lookup"
)

// These reproduce spec seed scenarios S3-S6 as synthetic fixtures: the
// real Breakpad .sym files they're drawn from are out of scope (DWARF/
// Breakpad parsing isn't part of this repository), but the exact
// function-name strings and edge cases they exercise — a long mangled
// C++ template name, a public symbol with no recorded size, and
// u16-wrapped line numbers — are worth reproducing verbatim.

const xulLambdaName = `std::_Func_impl_no_alloc<` + "`" + `lambda at /builds/worker/checkouts/gecko/netwerk/protocol/http/HttpChannelChild.cpp:411:7'` + `,void>::_Do_call()`

func TestSeedS3LongMangledName(t *testing.T) {
	sess := &fakeSession{
		arch: symcache.ArchAmd64,
		fns: []FunctionRecord{{
			Name:    xulLambdaName,
			EntryPC: 0xc6dd90,
			HasPC:   true,
			Lines: []LineRecord{
				{Address: 0xc6dd98, File: FileRef{Name: "HttpChannelChild.cpp"}, Line: 411},
			},
		}},
	}
	w := New()
	if err := w.Build(sess); err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	sc, err := lookup.Open(buf)
	if err != nil {
		t.Fatalf("lookup.Open: %v", err)
	}
	frames, err := lookup.Frames(sc, 0xc6dd98)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("len(frames) = %d, want 1", len(frames))
	}
	if frames[0].FunctionName != xulLambdaName {
		t.Errorf("FunctionName = %q, want %q", frames[0].FunctionName, xulLambdaName)
	}
}

func TestSeedS4PublicSymbolNoSize(t *testing.T) {
	sess := &fakeSession{
		arch: symcache.ArchAmd64,
		syms: []SymbolRecord{
			{Address: 0x1489adf, Name: "nouveau_drm_screen_create"},
		},
	}
	w := New()
	if err := w.Build(sess); err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	sc, err := lookup.Open(buf)
	if err != nil {
		t.Fatalf("lookup.Open: %v", err)
	}
	frames, err := lookup.Frames(sc, 0x1489adf)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 1 || frames[0].FunctionName != "nouveau_drm_screen_create" {
		t.Fatalf("frames = %+v, want one frame named nouveau_drm_screen_create", frames)
	}
}

func TestSeedS5WrappedLineNumbers(t *testing.T) {
	const fn = "Interpret(JSContext*, js::RunState&)"
	sess := &fakeSession{
		arch: symcache.ArchAmd64,
		fns: []FunctionRecord{{
			Name:    fn,
			EntryPC: 0x3c1059e,
			HasPC:   true,
			Lines: []LineRecord{
				{Address: 0x3c1059e, File: FileRef{Name: "Interpreter.cpp"}, Line: 65530},
				{Address: 0x3c105a0, File: FileRef{Name: "Interpreter.cpp"}, Line: 65534},
				// Wraps past 65536: the writer must reconstruct this as
				// 65539, not treat it as a regression to line 3.
				{Address: 0x3c105a1, File: FileRef{Name: "Interpreter.cpp"}, Line: 3},
			},
		}},
	}
	w := New()
	if err := w.Build(sess); err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	sc, err := lookup.Open(buf)
	if err != nil {
		t.Fatalf("lookup.Open: %v", err)
	}
	frames, err := lookup.Frames(sc, 0x3c105a1)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("len(frames) = %d, want 1", len(frames))
	}
	if frames[0].FunctionName != fn {
		t.Errorf("FunctionName = %q, want %q", frames[0].FunctionName, fn)
	}
	if frames[0].Line != 65539 {
		t.Errorf("Line = %d, want 65539 (65536 + 3, not a bare 3)", frames[0].Line)
	}
}

func TestSeedS6MagicPrefix(t *testing.T) {
	w := New()
	if err := w.Build(&fakeSession{arch: symcache.ArchAmd64}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !strings.HasPrefix(string(buf), "SYMC") {
		t.Fatalf("first 4 bytes = %q, want SYMC", buf[:4])
	}
}
