package parse

import (
	"errors"
	"testing"

	"fplay/grammar"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		kind   EventKind
		label  string
		length int
		args   []int
	}{
		{"note", []byte{0x24}, EvNote, "c3", 1, nil},
		{"drum", []byte{0x63}, EvDrum, "m3", 1, nil},
		{"end", []byte{0xE2}, EvCommand, "end", 1, nil},
		{"signed byte", []byte{0xE3, 0xFE}, EvCommand, "vol", 2, []int{-2}},
		{"word", []byte{0xE5, 0x34, 0x12}, EvCommand, "tempo", 3, []int{0x1234}},
		{"loop", []byte{0xE0, 0x03, 0x10, 0x40}, EvCommand, "loop", 4, []int{3, 0x4010}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decoderFor(image(tt.data))
			ev, err := d.DecodeEvent(HeaderBase)
			if err != nil {
				t.Fatalf("DecodeEvent: %v", err)
			}
			if ev.Kind != tt.kind {
				t.Errorf("kind: got %v, want %v", ev.Kind, tt.kind)
			}
			if ev.Name() != tt.label {
				t.Errorf("name: got %q, want %q", ev.Name(), tt.label)
			}
			if ev.Size() != tt.length {
				t.Errorf("length: got %d, want %d", ev.Size(), tt.length)
			}
			if len(ev.Args) != len(tt.args) {
				t.Fatalf("args: got %d, want %d", len(ev.Args), len(tt.args))
			}
			for i, want := range tt.args {
				if ev.Args[i].Value != want {
					t.Errorf("arg %d: got %d, want %d", i, ev.Args[i].Value, want)
				}
			}
		})
	}
}

func TestDecodeEventFlags(t *testing.T) {
	d := decoderFor(image{0xE0, 0x03, 0x10, 0x40, 0xE1, 0x00, 0x40, 0xE3, 0x01})

	loop, err := d.DecodeEvent(HeaderBase)
	if err != nil {
		t.Fatal(err)
	}
	target, ok := loop.Target()
	if !ok || target.Addr != 0x4010 {
		t.Errorf("loop target: got %v %v, want $4010", target, ok)
	}
	if loop.Final() || !loop.Control() || loop.Property() {
		t.Errorf("loop flags wrong")
	}
	if a := loop.Args[0]; a.Name != "count" || a.Value != 3 || a.Ref != nil {
		t.Errorf("loop count: got %+v", a)
	}

	jump, err := d.DecodeEvent(HeaderBase + 4)
	if err != nil {
		t.Fatal(err)
	}
	if !jump.Final() || !jump.Control() {
		t.Errorf("jump flags wrong")
	}

	vol, err := d.DecodeEvent(HeaderBase + 7)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := vol.Target(); ok || !vol.Property() {
		t.Errorf("vol: unexpected target or missing property flag")
	}
}

func TestDecodeEventPrefersLongerEncoding(t *testing.T) {
	g := grammar.New(grammar.Range{Lo: 0x00, Hi: 0x5f}, grammar.Range{Lo: 0x60, Hi: 0x7f}, []grammar.Command{
		{Opcode: 0x90, Name: "short"},
		{Opcode: 0x90, Name: "long", Params: []grammar.Param{{Name: "v", Width: 2}}},
		{Opcode: 0x91, Name: "mid", Params: []grammar.Param{{Name: "v", Width: 1}}},
		{Opcode: 0x91, Name: "tiny"},
	})
	d := NewDecoder(NewImage([]byte{0x90, 0x34, 0x12, 0x91, 0x05}), g)

	ev, err := d.DecodeEvent(HeaderBase)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Name() != "long" || ev.Size() != 3 || ev.Args[0].Value != 0x1234 {
		t.Errorf("got %s/%d %v, want long/3 [4660]", ev.Name(), ev.Size(), ev.Args)
	}

	ev, err = d.DecodeEvent(HeaderBase + 3)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Name() != "mid" || ev.Size() != 2 {
		t.Errorf("got %s/%d, want mid/2", ev.Name(), ev.Size())
	}
}

func TestDecodeEventUnknownOpcode(t *testing.T) {
	d := decoderFor(image{0x24, 0x24, 0xF0})
	_, err := d.DecodeEvent(HeaderBase + 2)

	var uoe *UnknownOpcodeError
	if !errors.As(err, &uoe) {
		t.Fatalf("got %v, want UnknownOpcodeError", err)
	}
	if uoe.Op != 0xF0 || uoe.Addr != HeaderBase+2 {
		t.Errorf("got op $%02X at $%04X, want $F0 at $%04X", uoe.Op, uoe.Addr, HeaderBase+2)
	}
	if got := uoe.Error(); got != "unknown opcode $F0 at $4002" {
		t.Errorf("message: %q", got)
	}
}

func TestDecodeEventTruncated(t *testing.T) {
	d := decoderFor(image{0x24, 0xE0, 0x02})
	_, err := d.DecodeEvent(HeaderBase + 1)

	var tce *TruncatedCommandError
	if !errors.As(err, &tce) {
		t.Fatalf("got %v, want TruncatedCommandError", err)
	}
	if tce.Name != "loop" || tce.Need != 4 || tce.Have != 2 || tce.Addr != HeaderBase+1 {
		t.Errorf("error fields: %+v", tce)
	}
}

func TestDecodeEventOutOfRange(t *testing.T) {
	d := decoderFor(image{0x24})
	_, err := d.DecodeEvent(HeaderBase + 1)
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Errorf("got %v, want OutOfRangeError", err)
	}
}
