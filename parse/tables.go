package parse

import "fmt"

// Tables have no length field: each one runs up to the next boundary. The
// decoders that find new pointers add them to the boundary set and re-read
// their own extent afterwards.

func (d *Decoder) tableEnd(start int) (int, error) {
	n, err := d.bounds.Extent(start)
	if err != nil {
		return 0, err
	}
	return start + n, nil
}

func (d *Decoder) decodeFMTable(start int) error {
	end, err := d.tableEnd(start)
	if err != nil {
		return err
	}
	for pos := start; pos+FMInstrumentSize <= end; pos += FMInstrumentSize {
		inst, err := d.readFMInstrument(pos)
		if err != nil {
			return err
		}
		if err := d.objs.Put(pos, inst); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) readFMInstrument(addr int) (*FMInstrument, error) {
	s, err := d.img.Record(addr, FMInstrumentSize)
	if err != nil {
		return nil, err
	}
	inst := &FMInstrument{}
	copy(inst.Raw[:], s)

	fields := []func(op *FMOperator) *byte{
		func(op *FMOperator) *byte { return &op.DTML },
		func(op *FMOperator) *byte { return &op.TL },
		func(op *FMOperator) *byte { return &op.KSAR },
		func(op *FMOperator) *byte { return &op.DR },
		func(op *FMOperator) *byte { return &op.SR },
		func(op *FMOperator) *byte { return &op.SLRR },
		func(op *FMOperator) *byte { return &op.SSGEG },
	}
	for _, field := range fields {
		for i := range inst.Ops {
			if !s.ReadUint8(field(&inst.Ops[i])) {
				return nil, fmt.Errorf("fm instrument at $%04X: short record", addr)
			}
		}
	}
	if !s.ReadUint8(&inst.FBAlg) || !s.CopyBytes(inst.Unused[:]) {
		return nil, fmt.Errorf("fm instrument at $%04X: short record", addr)
	}
	return inst, nil
}

// decodePointerTable walks a table of 2-byte sequence pointers. Null entries
// are kept undecoded; an entry pointing outside the image ends the table.
func (d *Decoder) decodePointerTable(start int, kind SlotKind, decode func(int) error) error {
	end, err := d.tableEnd(start)
	if err != nil {
		return err
	}
	for pos := start; pos+PointerSize <= end; pos += PointerSize {
		w, err := d.img.Word(pos)
		if err != nil {
			return err
		}
		ptr := int(w)
		if ptr != 0 && !d.img.Contains(ptr) {
			break
		}
		if err := d.objs.Put(pos, &PointerSlot{Kind: kind, Target: Ref{Addr: ptr}}); err != nil {
			return err
		}
		if ptr == 0 {
			continue
		}

		d.bounds.Add(ptr)
		if end, err = d.tableEnd(start); err != nil {
			return err
		}
		if err := decode(ptr); err != nil {
			return fmt.Errorf("entry at $%04X: %w", pos, err)
		}
	}
	return nil
}

func (d *Decoder) decodeNoteLenTable(start int) error {
	end, err := d.tableEnd(start)
	if err != nil {
		return err
	}
	for pos := start; pos < end; pos++ {
		b, err := d.img.Byte(pos)
		if err != nil {
			return err
		}
		if err := d.objs.Put(pos, &NoteLen{Duration: b}); err != nil {
			return err
		}
	}
	return nil
}

// decodeDrumTable reads 11-byte drum macros. The extent is taken again before
// every record because earlier records of this table may have added
// boundaries. A record with a pointer outside the image ends the table.
func (d *Decoder) decodeDrumTable(start int) error {
	for pos := start; ; pos += DrumDefSize {
		end, err := d.tableEnd(start)
		if err != nil {
			return err
		}
		if pos+DrumDefSize > end {
			return nil
		}

		def, err := d.readDrumDef(pos)
		if err != nil {
			return err
		}

		refs := []*Ref{&def.Vol, &def.Pitch, &def.Gate, &def.Noise}
		for _, r := range refs {
			if r.Addr != 0 && !d.img.Contains(r.Addr) {
				return nil
			}
		}
		for _, r := range refs {
			if r.Addr != 0 {
				d.bounds.Add(r.Addr)
			}
		}

		decoders := []func(int) error{d.DecodeVolSeq, d.DecodePitchSeq, d.DecodeGateSeq, d.DecodeNoiseSeq}
		for i, r := range refs {
			if r.Addr == 0 {
				continue
			}
			if err := decoders[i](r.Addr); err != nil {
				return fmt.Errorf("drum macro at $%04X: %w", pos, err)
			}
		}

		if err := d.objs.Put(pos, def); err != nil {
			return err
		}
	}
}

func (d *Decoder) readDrumDef(addr int) (*DrumDef, error) {
	s, err := d.img.Record(addr, DrumDefSize)
	if err != nil {
		return nil, err
	}
	def := &DrumDef{}
	var vol, pitch, gate, noise uint16
	if !s.ReadUint8(&def.Instrument) ||
		!s.ReadUint8(&def.Note) ||
		!readInt8(&s, &def.VolMod) ||
		!readLE16(&s, &vol) ||
		!readLE16(&s, &pitch) ||
		!readLE16(&s, &gate) ||
		!readLE16(&s, &noise) {
		return nil, fmt.Errorf("drum macro at $%04X: short record", addr)
	}
	def.NoteName, _ = d.gram.NoteName(def.Note)
	def.Vol = Ref{Addr: int(vol)}
	def.Pitch = Ref{Addr: int(pitch)}
	def.Gate = Ref{Addr: int(gate)}
	def.Noise = Ref{Addr: int(noise)}
	return def, nil
}

// decodeSongTable reads song header pointers. 0x0000 and 0xFFFF are padding.
// A pointer below the header base means the scan has run into other data.
func (d *Decoder) decodeSongTable(start int) error {
	for pos := start; ; pos += PointerSize {
		end, err := d.tableEnd(start)
		if err != nil {
			return err
		}
		if pos+PointerSize > end {
			return nil
		}

		w, err := d.img.Word(pos)
		if err != nil {
			return err
		}
		head := int(w)
		if head == 0x0000 || head == 0xFFFF {
			continue
		}
		if head < d.img.Base || head >= d.img.End() {
			return nil
		}

		d.bounds.Add(head)
		if err := d.objs.Put(pos, &PointerSlot{Kind: SlotSong, Target: Ref{Addr: head}}); err != nil {
			return err
		}
		if err := d.decodeSong(head); err != nil {
			return fmt.Errorf("song at $%04X: %w", head, err)
		}
	}
}

// decodeSong reads the song header byte and the track records after it,
// walking each track's event stream.
func (d *Decoder) decodeSong(head int) error {
	if obj, ok := d.objs.At(head); ok {
		if _, done := obj.(*SongHeader); done {
			return nil
		}
	}

	b, err := d.img.Byte(head)
	if err != nil {
		return err
	}
	hdr := &SongHeader{Flags: b >> 4, TrackCount: b & 0x0F}
	if err := d.objs.Put(head, hdr); err != nil {
		return err
	}

	pos := head + 1
	for i := 0; i < int(hdr.TrackCount); i++ {
		tr, err := d.readTrack(pos)
		if err != nil {
			return err
		}
		if err := d.WalkTrack(tr.Seq.Addr); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
		if err := d.objs.Put(pos, tr); err != nil {
			return err
		}
		pos += TrackSize
	}
	return nil
}

func (d *Decoder) readTrack(addr int) (*Track, error) {
	s, err := d.img.Record(addr, TrackSize)
	if err != nil {
		return nil, err
	}
	tr := &Track{}
	var seq uint16
	if !s.ReadUint8(&tr.Num) ||
		!s.ReadUint8(&tr.Mode) ||
		!readInt8(&s, &tr.Vol) ||
		!s.ReadUint8(&tr.VolEnv) ||
		!s.ReadUint8(&tr.PitchEnv) ||
		!readInt8(&s, &tr.Transpose) ||
		!s.ReadUint8(&tr.Speed) ||
		!s.ReadUint8(&tr.Chan) ||
		!readLE16(&s, &seq) ||
		!s.ReadUint8(&tr.Instrument) ||
		!s.ReadUint8(&tr.Reserved) {
		return nil, fmt.Errorf("track at $%04X: short record", addr)
	}
	tr.Seq = Ref{Addr: int(seq)}
	return tr, nil
}

// decodeSignature keeps the printable format tag as a Magic annotation. A
// forced decode has no verified tag to keep.
func (d *Decoder) decodeSignature() error {
	start := HdrSignature
	if d.force || !d.img.Contains(start) || d.objs.State(start) != Empty {
		return nil
	}
	end, err := d.tableEnd(start)
	if err != nil {
		return err
	}

	var text []byte
	for pos := start; pos < end; pos++ {
		if pos != start && d.objs.State(pos) != Empty {
			break
		}
		b, err := d.img.Byte(pos)
		if err != nil {
			return err
		}
		if b < 0x20 || b > 0x7F || b == '"' {
			break
		}
		text = append(text, b)
	}
	if len(text) == 0 {
		return nil
	}
	return d.objs.Put(start, &Magic{Text: string(text)})
}
