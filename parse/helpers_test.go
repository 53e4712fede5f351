package parse

import (
	"fplay/grammar"
)

func testGrammar() *grammar.Grammar {
	return grammar.New(grammar.Range{Lo: 0x00, Hi: 0x5f}, grammar.Range{Lo: 0x60, Hi: 0x7f}, []grammar.Command{
		{Opcode: 0xE0, Name: "loop", Control: true, Params: []grammar.Param{{Name: "count", Width: 1}, {Name: "addr", Width: 2}}},
		{Opcode: 0xE1, Name: "jump", Final: true, Control: true, Params: []grammar.Param{{Name: "addr", Width: 2}}},
		{Opcode: 0xE2, Name: "end", Final: true},
		{Opcode: 0xE3, Name: "vol", Property: true, Params: []grammar.Param{{Name: "v", Width: 1, Signed: true}}},
		{Opcode: 0xE4, Name: "call", Control: true, Params: []grammar.Param{{Name: "addr", Width: 2}}},
		{Opcode: 0xE5, Name: "tempo", Property: true, Params: []grammar.Param{{Name: "t", Width: 2}}},
		{Opcode: 0xE6, Name: "setptr", Params: []grammar.Param{{Name: "addr", Width: 2}}},
	})
}

// image is a zero-filled song image addressed from HeaderBase.
type image []byte

func newImage(size int) image {
	return make(image, size)
}

func (img image) put(addr int, b ...byte) {
	copy(img[addr-HeaderBase:], b)
}

func (img image) word(addr int, v int) {
	img[addr-HeaderBase] = byte(v)
	img[addr-HeaderBase+1] = byte(v >> 8)
}

// decoderFor returns a decoder whose boundary set holds only the image base
// and end, plus extra.
func decoderFor(img image, extra ...int) *Decoder {
	d := NewDecoder(NewImage(img), testGrammar())
	d.bounds.Add(d.img.Base, d.img.End())
	d.bounds.Add(extra...)
	return d
}

// sampleImage builds a small but complete song file:
//
//	4000 header pointers, 400C signature
//	4020 two FM instruments, 4060 note lengths
//	4064 volume table, 4068 pitch table, 406A one drum macro
//	4075 song table (0000, FFFF, 407B), 407B song with two tracks
//	40A0 track 0 events, 40B0 track 1 events, 40C0 called block
//	4100/4105 volume envelopes, 4110 pitch, 4120 gate, 4124 noise
func sampleImage() image {
	img := newImage(0x128)

	img.word(HdrFMTable, 0x4020)
	img.word(HdrNoteLenTable, 0x4060)
	img.word(HdrVolTable, 0x4064)
	img.word(HdrPitchTable, 0x4068)
	img.word(HdrSongTable, 0x4075)
	img.word(HdrDrumTable, 0x406A)
	img.put(HdrSignature, Signature...)

	for i := 0; i < 2*FMInstrumentSize; i++ {
		img[0x20+i] = byte(i)
	}

	img.put(0x4060, 0x18, 0x0C, 0x06, 0x30)

	img.word(0x4064, 0x4100)
	img.word(0x4066, 0x4105)
	img.word(0x4068, 0x4110)

	// instrument 2, note c4, volume -3, vol envelope points inside 4100
	img.put(0x406A, 0x02, 0x30, 0xFD)
	img.word(0x406D, 0x4101)
	img.word(0x406F, 0x4110)
	img.word(0x4071, 0x4120)
	img.word(0x4073, 0x4124)

	img.word(0x4075, 0x0000)
	img.word(0x4077, 0xFFFF)
	img.word(0x4079, 0x407B)

	img.put(0x407B, 0x12)
	img.put(0x407C, 0x00, 0x01, 0xFE, 0x00, 0x00, 0xF4, 0x06, 0x00)
	img.word(0x4084, 0x40A0)
	img.put(0x4086, 0x01, 0x00)
	img.put(0x4088, 0x01, 0x01, 0x00, 0x01, 0x02, 0x00, 0x06, 0x01)
	img.word(0x4090, 0x40B0)
	img.put(0x4092, 0x03, 0x00)

	img.put(0x40A0,
		0x24,                   // c3
		0xE3, 0xFE,             // vol -2
		0x60,                   // m0
		0xE0, 0x02, 0xA0, 0x40, // loop 2, 40A0
		0xE4, 0xC0, 0x40,       // call 40C0
		0xE2,                   // end
	)
	img.put(0x40B0,
		0x30,             // c4
		0xE5, 0x78, 0x00, // tempo 120
		0xE1, 0xA0, 0x40, // jump 40A0
	)
	img.put(0x40C0, 0x3C, 0xE2)

	img.put(0x4100, 0x7F, 0x05, 0x81)
	img.put(0x4105, 0x10, 0x80, 0x20, 0x83, 0x00)
	img.put(0x4110, 0x01, 0xFF, 0x80)
	img.put(0x4120, 0x0F, 0x0E, 0x81)
	img.put(0x4124, 0x01, 0x02, 0xFF)

	return img
}
