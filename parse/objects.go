package parse

import (
	"fmt"

	"fplay/grammar"
)

// Object is a decoded structure stored in the AddressMap. The set of
// implementations is closed; consumers switch on the concrete type.
type Object interface {
	Size() int
	Name() string
	object()
}

// Ref is a pointer field. Label is filled in by label resolution and stays
// empty for targets outside the image.
type Ref struct {
	Addr  int
	Label string
}

// String returns the label, or the bare address as a listing number: word
// values in assembler hex, byte values as three decimal digits.
func (r Ref) String() string {
	if r.Label != "" {
		return r.Label
	}
	if r.Addr > 0xFF {
		return fmt.Sprintf("0%04xh", r.Addr)
	}
	return fmt.Sprintf("%03d", r.Addr)
}

const (
	FMInstrumentSize = 0x20
	DrumDefSize      = 0xB
	TrackSize        = 0xC
	PointerSize      = 2
)

type FMOperator struct {
	DTML  byte // detune / multiple
	TL    byte // total level
	KSAR  byte // key scale / attack rate
	DR    byte // decay rate
	SR    byte // sustain rate
	SLRR  byte // sustain level / release rate
	SSGEG byte
}

// FMInstrument is one 32-byte voice. Operators are stored in register order
// 1, 3, 2, 4.
type FMInstrument struct {
	Raw    [FMInstrumentSize]byte
	Ops    [4]FMOperator
	FBAlg  byte
	Unused [3]byte
}

// FMOperatorOrder maps Ops indices to operator numbers.
var FMOperatorOrder = [4]int{1, 3, 2, 4}

type DrumDef struct {
	Instrument byte
	Note       byte
	NoteName   string
	VolMod     int8
	Vol        Ref
	Pitch      Ref
	Gate       Ref
	Noise      Ref
}

type SeqKind int

const (
	SeqVol SeqKind = iota
	SeqPitch
	SeqGate
	SeqNoise
)

func (k SeqKind) String() string {
	switch k {
	case SeqVol:
		return "volSeq"
	case SeqPitch:
		return "pitchSeq"
	case SeqGate:
		return "gateSeq"
	case SeqNoise:
		return "noiseSeq"
	}
	return fmt.Sprintf("SeqKind(%d)", int(k))
}

type TokenKind int

const (
	TokLevel TokenKind = iota
	TokMark
	TokStop
	TokRestart
	TokJump
	TokJumpFar
	TokEnd
	TokPitchStop
	TokPitchJump
)

var tokenNames = map[TokenKind]string{
	TokMark:      "vMark",
	TokStop:      "vStop",
	TokRestart:   "vRestart",
	TokJump:      "vJump",
	TokJumpFar:   "vJumpFar",
	TokEnd:       "nEnd",
	TokPitchStop: "pStop",
	TokPitchJump: "pJump",
}

// Token is one element of an envelope sequence. Value holds the level for
// TokLevel and the operand for jumps.
type Token struct {
	Kind  TokenKind
	Value int
}

func (t Token) String() string {
	switch t.Kind {
	case TokLevel:
		return fmt.Sprint(t.Value)
	case TokJump, TokJumpFar, TokPitchJump:
		return fmt.Sprintf("%s %d", tokenNames[t.Kind], t.Value)
	}
	return tokenNames[t.Kind]
}

type Sequence struct {
	Kind   SeqKind
	Tokens []Token
	Length int
}

type NoteLen struct {
	Duration byte
}

// SongHeader is the first byte of a song: flags in the high nibble, track
// count in the low nibble. Track records follow it.
type SongHeader struct {
	Flags      byte
	TrackCount byte
}

type Track struct {
	Num        byte
	Mode       byte
	Vol        int8
	VolEnv     byte
	PitchEnv   byte
	Transpose  int8
	Speed      byte
	Chan       byte
	Seq        Ref
	Instrument byte
	Reserved   byte
}

type EventKind int

const (
	EvCommand EventKind = iota
	EvNote
	EvDrum
)

type Arg struct {
	Name  string
	Value int
	Ref   *Ref // set for address operands
}

func (a Arg) String() string {
	if a.Ref != nil {
		return a.Ref.String()
	}
	return fmt.Sprint(a.Value)
}

type Event struct {
	Kind   EventKind
	Cmd    *grammar.Command
	Args   []Arg
	Note   string
	Drum   int
	Length int
}

func (e *Event) Final() bool    { return e.Cmd != nil && e.Cmd.Final }
func (e *Event) Control() bool  { return e.Cmd != nil && e.Cmd.Control }
func (e *Event) Property() bool { return e.Cmd != nil && e.Cmd.Property }

// Target returns the control-transfer destination, if the command has one.
func (e *Event) Target() (*Ref, bool) {
	if !e.Control() {
		return nil, false
	}
	for _, a := range e.Args {
		if a.Ref != nil {
			return a.Ref, true
		}
	}
	return nil, false
}

type SlotKind int

const (
	SlotFMTable SlotKind = iota
	SlotNoteLenTable
	SlotVolTable
	SlotPitchTable
	SlotSongTable
	SlotDrumTable
	SlotVolSeq
	SlotPitchSeq
	SlotSong
)

var slotNames = [...]string{
	SlotFMTable:      "pFmToneTbl",
	SlotNoteLenTable: "pNoteLengthTbl",
	SlotVolTable:     "pVolEnvTbl",
	SlotPitchTable:   "pPitchEnvTbl",
	SlotSongTable:    "pSongTbl",
	SlotDrumTable:    "pDrumMacroTbl",
	SlotVolSeq:       "pVolSeq",
	SlotPitchSeq:     "pPitchSeq",
	SlotSong:         "song",
}

func (k SlotKind) String() string {
	if int(k) < len(slotNames) {
		return slotNames[k]
	}
	return fmt.Sprintf("SlotKind(%d)", int(k))
}

// PointerSlot is a table cell holding nothing but a little-endian address.
type PointerSlot struct {
	Kind   SlotKind
	Target Ref
}

// Magic is the printable signature text kept as an annotation.
type Magic struct {
	Text string
}

// Location is a raw byte that became the target of a reference.
type Location struct {
	Value byte
}

func (*FMInstrument) Size() int { return FMInstrumentSize }
func (*DrumDef) Size() int      { return DrumDefSize }
func (s *Sequence) Size() int   { return s.Length }
func (*NoteLen) Size() int      { return 1 }
func (*SongHeader) Size() int   { return 1 }
func (*Track) Size() int        { return TrackSize }
func (e *Event) Size() int      { return e.Length }
func (*PointerSlot) Size() int  { return PointerSize }
func (m *Magic) Size() int      { return len(m.Text) }
func (*Location) Size() int     { return 1 }

func (*FMInstrument) Name() string  { return "fmInstrument" }
func (*DrumDef) Name() string       { return "drumDef" }
func (s *Sequence) Name() string    { return s.Kind.String() }
func (*NoteLen) Name() string       { return "noteLen" }
func (*SongHeader) Name() string    { return "songDef" }
func (*Track) Name() string         { return "track" }
func (p *PointerSlot) Name() string { return p.Kind.String() }
func (*Magic) Name() string         { return "magic" }
func (*Location) Name() string      { return "loc" }

func (e *Event) Name() string {
	switch e.Kind {
	case EvNote:
		return e.Note
	case EvDrum:
		return fmt.Sprintf("m%d", e.Drum)
	}
	return e.Cmd.Name
}

func (*FMInstrument) object() {}
func (*DrumDef) object()      {}
func (*Sequence) object()     {}
func (*NoteLen) object()      {}
func (*SongHeader) object()   {}
func (*Track) object()        {}
func (*Event) object()        {}
func (*PointerSlot) object()  {}
func (*Magic) object()        {}
func (*Location) object()     {}

// Refs returns the pointer fields of obj.
func Refs(obj Object) []*Ref {
	switch o := obj.(type) {
	case *DrumDef:
		return []*Ref{&o.Vol, &o.Pitch, &o.Gate, &o.Noise}
	case *Track:
		return []*Ref{&o.Seq}
	case *PointerSlot:
		return []*Ref{&o.Target}
	case *Event:
		var refs []*Ref
		for _, a := range o.Args {
			if a.Ref != nil {
				refs = append(refs, a.Ref)
			}
		}
		return refs
	case *FMInstrument, *Sequence, *NoteLen, *SongHeader, *Magic, *Location:
	}
	return nil
}
