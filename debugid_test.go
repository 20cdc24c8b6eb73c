package symcache

import "testing"

func TestParseDebugId(t *testing.T) {
	for _, tt := range []struct {
		input        string
		wantUUID     [16]byte
		wantAppendix uint32
	}{
		{
			input:        "c0bcc3f1982709e653058404b2831d9e60",
			wantUUID:     [16]byte{0xc0, 0xbc, 0xc3, 0xf1, 0x98, 0x27, 0x09, 0xe6, 0x53, 0x05, 0x84, 0x04, 0xb2, 0x83, 0x1d, 0x9e},
			wantAppendix: 0x60,
		},
		{
			input:        "c0bcc3f1-9827-09e6-5305-8404b2831d9e-7",
			wantUUID:     [16]byte{0xc0, 0xbc, 0xc3, 0xf1, 0x98, 0x27, 0x09, 0xe6, 0x53, 0x05, 0x84, 0x04, 0xb2, 0x83, 0x1d, 0x9e},
			wantAppendix: 7,
		},
		{
			input:        "c0bcc3f1982709e653058404b2831d9e6",
			wantUUID:     [16]byte{0xc0, 0xbc, 0xc3, 0xf1, 0x98, 0x27, 0x09, 0xe6, 0x53, 0x05, 0x84, 0x04, 0xb2, 0x83, 0x1d, 0x9e},
			wantAppendix: 0x6,
		},
	} {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDebugId(tt.input)
			if err != nil {
				t.Fatalf("ParseDebugId(%q): %v", tt.input, err)
			}
			if got.UUID != tt.wantUUID {
				t.Errorf("ParseDebugId(%q).UUID = %x, want %x", tt.input, got.UUID, tt.wantUUID)
			}
			if got.Appendix != tt.wantAppendix {
				t.Errorf("ParseDebugId(%q).Appendix = %d, want %d", tt.input, got.Appendix, tt.wantAppendix)
			}
		})
	}
}

func TestDebugIdRoundTrip(t *testing.T) {
	id := DebugId{
		UUID:     [16]byte{0xc0, 0xbc, 0xc3, 0xf1, 0x98, 0x27, 0xfe, 0x65, 0x30, 0x58, 0x40, 0x4b, 0x28, 0x31, 0xd9, 0xe6},
		Appendix: 7,
	}
	b := id.Bytes()
	got := DebugIdFromBytes(b)
	if got != id {
		t.Fatalf("DebugIdFromBytes(id.Bytes()) = %+v, want %+v", got, id)
	}
}
