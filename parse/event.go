package parse

import "fplay/grammar"

// DecodeEvent decodes the single event at addr: a command from the grammar,
// a note or a drum trigger, tried in that order.
func (d *Decoder) DecodeEvent(addr int) (*Event, error) {
	op, err := d.img.Byte(addr)
	if err != nil {
		return nil, err
	}

	if cmd, ok := d.gram.Lookup(op); ok {
		return d.decodeCommand(addr, op, cmd)
	}
	if name, ok := d.gram.NoteName(op); ok {
		return &Event{Kind: EvNote, Note: name, Length: 1}, nil
	}
	if drum, ok := d.gram.Drum(op); ok {
		return &Event{Kind: EvDrum, Drum: drum, Length: 1}, nil
	}
	return nil, &UnknownOpcodeError{Addr: addr, Op: op}
}

func (d *Decoder) decodeCommand(addr int, op byte, cmd *grammar.Command) (*Event, error) {
	need := cmd.Length()
	if have := d.img.End() - addr; have < need {
		return nil, &TruncatedCommandError{Addr: addr, Op: op, Name: cmd.Name, Need: need, Have: have}
	}

	ev := &Event{Kind: EvCommand, Cmd: cmd, Length: need}
	pos := addr + 1
	for _, p := range cmd.Params {
		v, err := d.readParam(pos, p)
		if err != nil {
			return nil, err
		}
		arg := Arg{Name: p.Name, Value: v}
		if p.Name == grammar.ArgTarget {
			arg.Ref = &Ref{Addr: v}
		}
		ev.Args = append(ev.Args, arg)
		pos += p.Width
	}
	return ev, nil
}

func (d *Decoder) readParam(addr int, p grammar.Param) (int, error) {
	if p.Width == 2 {
		w, err := d.img.Word(addr)
		if err != nil {
			return 0, err
		}
		if p.Signed {
			return int(int16(w)), nil
		}
		return int(w), nil
	}
	b, err := d.img.Byte(addr)
	if err != nil {
		return 0, err
	}
	if p.Signed {
		return int(int8(b)), nil
	}
	return int(b), nil
}
