package parse

// Envelope sequences carry no length; each decoder reads until its own
// terminator and never looks at the boundary set.

func (d *Decoder) seqByte(kind SeqKind, start, addr int) (byte, error) {
	b, err := d.img.Byte(addr)
	if err != nil {
		if addr == start {
			return 0, err
		}
		return 0, &MalformedSequenceError{Kind: kind, Start: start, Addr: addr, End: true}
	}
	return b, nil
}

func (d *Decoder) putSeq(kind SeqKind, start int, toks []Token, length int) error {
	return d.objs.Put(start, &Sequence{Kind: kind, Tokens: toks, Length: length})
}

// DecodeVolSeq decodes a volume envelope. 0xFF is accepted as a terminator
// alongside 0x81; real song files use both.
func (d *Decoder) DecodeVolSeq(start int) error {
	var toks []Token
	for pos := start; ; pos++ {
		v, err := d.seqByte(SeqVol, start, pos)
		if err != nil {
			return err
		}
		switch v {
		case 0x80:
			toks = append(toks, Token{Kind: TokMark})
		case 0x81:
			toks = append(toks, Token{Kind: TokStop})
			return d.putSeq(SeqVol, start, toks, pos+1-start)
		case 0x82:
			toks = append(toks, Token{Kind: TokRestart})
		case 0x83:
			op, err := d.seqByte(SeqVol, start, pos+1)
			if err != nil {
				return err
			}
			toks = append(toks, Token{Kind: TokJump, Value: int(op)})
			return d.putSeq(SeqVol, start, toks, pos+2-start)
		case 0x84:
			lo, err := d.seqByte(SeqVol, start, pos+1)
			if err != nil {
				return err
			}
			hi, err := d.seqByte(SeqVol, start, pos+2)
			if err != nil {
				return err
			}
			toks = append(toks, Token{Kind: TokJumpFar, Value: int(lo) | int(hi)<<8})
			return d.putSeq(SeqVol, start, toks, pos+3-start)
		case 0xFF:
			toks = append(toks, Token{Kind: TokEnd})
			return d.putSeq(SeqVol, start, toks, pos+1-start)
		default:
			toks = append(toks, Token{Kind: TokLevel, Value: int(v)})
		}
	}
}

// DecodePitchSeq decodes a pitch envelope of signed deltas ended by 0x80
// (stop) or 0x81 followed by a one-byte jump target.
func (d *Decoder) DecodePitchSeq(start int) error {
	var toks []Token
	for pos := start; ; pos++ {
		v, err := d.seqByte(SeqPitch, start, pos)
		if err != nil {
			return err
		}
		if v < 0x80 || v > 0x81 {
			toks = append(toks, Token{Kind: TokLevel, Value: int(int8(v))})
			continue
		}
		switch v {
		case 0x80:
			toks = append(toks, Token{Kind: TokPitchStop})
			return d.putSeq(SeqPitch, start, toks, pos+1-start)
		case 0x81:
			op, err := d.seqByte(SeqPitch, start, pos+1)
			if err != nil {
				return err
			}
			toks = append(toks, Token{Kind: TokPitchJump, Value: int(op)})
			return d.putSeq(SeqPitch, start, toks, pos+2-start)
		}
		return &MalformedSequenceError{Kind: SeqPitch, Start: start, Addr: pos, Value: v}
	}
}

func (d *Decoder) DecodeGateSeq(start int) error {
	return d.decodeMaskSeq(SeqGate, start)
}

func (d *Decoder) DecodeNoiseSeq(start int) error {
	return d.decodeMaskSeq(SeqNoise, start)
}

// decodeMaskSeq reads SSG gate or noise masks up to 0xFF. Some files end
// these with the volume stop byte 0x81 instead.
func (d *Decoder) decodeMaskSeq(kind SeqKind, start int) error {
	var toks []Token
	for pos := start; ; pos++ {
		v, err := d.seqByte(kind, start, pos)
		if err != nil {
			return err
		}
		switch v {
		case 0xFF:
			toks = append(toks, Token{Kind: TokEnd})
			return d.putSeq(kind, start, toks, pos+1-start)
		case 0x81:
			toks = append(toks, Token{Kind: TokStop})
			return d.putSeq(kind, start, toks, pos+1-start)
		}
		toks = append(toks, Token{Kind: TokLevel, Value: int(v)})
	}
}
