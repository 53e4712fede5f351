// Package listing renders a decoded song image as an assembler source file
// that assembles back into the input file.
package listing

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"fplay/parse"
)

const prologue = "\n\tinclude \"general.inc\"\n\torg 04000h\n\nstart:\n"

type Options struct {
	// Debug prefixes each line with its offset from the image base.
	Debug bool
}

// Write renders p and writes the whole listing to w in one call.
func Write(w io.Writer, p *parse.ParsedImage, opts Options) error {
	out, err := Render(p, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

type printer struct {
	buf     bytes.Buffer
	opts    Options
	base    int
	hanging bool   // a line of packed events is open
	last    string // name of the last annotated object
}

// Render walks the address map in order. Decoded objects become macro lines,
// raw bytes become db lines and continuation bytes are skipped.
func Render(p *parse.ParsedImage, opts Options) ([]byte, error) {
	m := p.Map
	pr := &printer{opts: opts, base: m.Base()}
	pr.buf.WriteString(prologue)

	prevCont := false
	for addr := m.Base(); addr < m.End(); addr++ {
		switch m.State(addr) {
		case parse.Continuation:
			prevCont = true
			continue
		case parse.Empty:
			b, err := p.Image.Byte(addr)
			if err != nil {
				return nil, err
			}
			if pr.hanging {
				pr.endHanging()
			} else if prevCont {
				pr.buf.WriteByte('\n')
			}
			pr.line(addr, rawByte(b))
		case parse.Occupied:
			obj, _ := m.At(addr)
			if label, ok := m.Label(addr); ok {
				pr.endHanging()
				fmt.Fprintf(&pr.buf, "\n%s:\n", label)
			}
			if err := pr.object(addr, obj); err != nil {
				return nil, err
			}
		}
		prevCont = false
	}
	pr.endHanging()

	return pr.buf.Bytes(), nil
}

func (pr *printer) prefix(addr int) string {
	if pr.opts.Debug {
		return fmt.Sprintf("%04x\t", addr-pr.base)
	}
	return "\t"
}

func (pr *printer) line(addr int, text string) {
	pr.buf.WriteString(pr.prefix(addr))
	pr.buf.WriteString(text)
	pr.buf.WriteByte('\n')
}

func (pr *printer) endHanging() {
	if pr.hanging {
		pr.buf.WriteByte('\n')
		pr.hanging = false
	}
}

func (pr *printer) object(addr int, obj parse.Object) error {
	switch o := obj.(type) {
	case *parse.Event:
		// flow commands get their own line; notes, drums and property
		// commands share one
		if o.Kind == parse.EvCommand && !o.Property() {
			pr.endHanging()
			pr.line(addr, eventText(o))
			return nil
		}
		if pr.hanging {
			pr.buf.WriteByte(' ')
		} else {
			pr.buf.WriteString(pr.prefix(addr))
		}
		pr.buf.WriteString(eventText(o))
		pr.hanging = true
		return nil

	case *parse.Location:
		pr.endHanging()
		pr.line(addr, rawByte(o.Value))
		return nil
	}

	r, err := describe(obj)
	if err != nil {
		return fmt.Errorf("$%04X: %w", addr, err)
	}
	pr.endHanging()
	if r.name != pr.last {
		fmt.Fprintf(&pr.buf, ";\t%s %s\n", r.name, strings.Join(r.fields, ", "))
	}
	pr.line(addr, r.macro())
	pr.last = r.name
	return nil
}

// record is the printable form of a data object: field names for the
// annotation line and formatted values for the macro line.
type record struct {
	name   string
	fields []string
	values []string
}

func (r record) macro() string {
	if len(r.values) == 0 {
		return r.name
	}
	return r.name + " " + strings.Join(r.values, " ")
}

var fmRegisters = []string{"dtml", "tl", "ksar", "dr", "sr", "slrr", "ssge"}

func describe(obj parse.Object) (record, error) {
	switch o := obj.(type) {
	case *parse.FMInstrument:
		r := record{name: o.Name()}
		for _, reg := range fmRegisters {
			for i := range o.Ops {
				r.fields = append(r.fields, fmt.Sprintf("op%d_%s", parse.FMOperatorOrder[i], reg))
				r.values = append(r.values, Num(int(fmRegister(&o.Ops[i], reg))))
			}
		}
		r.fields = append(r.fields, "fbalg")
		r.values = append(r.values, Num(int(o.FBAlg)))
		for i, b := range o.Unused {
			r.fields = append(r.fields, fmt.Sprintf("unused%d", i+1))
			r.values = append(r.values, Num(int(b)))
		}
		return r, nil

	case *parse.DrumDef:
		note := o.NoteName
		if note == "" {
			note = Num(int(o.Note))
		}
		return record{
			name:   o.Name(),
			fields: []string{"instr", "note", "vol_mod", "vol_env_ptr", "pitch_env_ptr", "ssg_mask_env_ptr", "ssg_noise_env_ptr"},
			values: []string{Num(int(o.Instrument)), note, Num(int(o.VolMod)), o.Vol.String(), o.Pitch.String(), o.Gate.String(), o.Noise.String()},
		}, nil

	case *parse.Sequence:
		r := record{name: o.Name(), fields: []string{"tokens"}}
		for _, tok := range o.Tokens {
			r.values = append(r.values, tok.String())
		}
		return r, nil

	case *parse.NoteLen:
		return record{name: o.Name(), fields: []string{"duration"}, values: []string{Num(int(o.Duration))}}, nil

	case *parse.SongHeader:
		return record{
			name:   o.Name(),
			fields: []string{"flags", "track_count"},
			values: []string{Num(int(o.Flags)), Num(int(o.TrackCount))},
		}, nil

	case *parse.Track:
		return record{
			name:   o.Name(),
			fields: []string{"num", "mode", "vol", "vol_env", "pitch_env", "transpose", "speed", "chan", "seq_ptr", "instrument", "unknown"},
			values: []string{
				Num(int(o.Num)), Num(int(o.Mode)), Num(int(o.Vol)), Num(int(o.VolEnv)), Num(int(o.PitchEnv)),
				Num(int(o.Transpose)), Num(int(o.Speed)), Num(int(o.Chan)), o.Seq.String(), Num(int(o.Instrument)), Num(int(o.Reserved)),
			},
		}, nil

	case *parse.PointerSlot:
		return record{name: o.Name(), fields: []string{"pos"}, values: []string{o.Target.String()}}, nil

	case *parse.Magic:
		return record{name: o.Name(), fields: []string{"data"}, values: []string{`"` + o.Text + `"`}}, nil

	case *parse.Event, *parse.Location:
		return record{}, fmt.Errorf("%s is not a data record", obj.Name())
	}
	return record{}, fmt.Errorf("unknown object type %T", obj)
}

func fmRegister(op *parse.FMOperator, reg string) byte {
	switch reg {
	case "dtml":
		return op.DTML
	case "tl":
		return op.TL
	case "ksar":
		return op.KSAR
	case "dr":
		return op.DR
	case "sr":
		return op.SR
	case "slrr":
		return op.SLRR
	}
	return op.SSGEG
}

func eventText(e *parse.Event) string {
	if len(e.Args) == 0 {
		return e.Name()
	}
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Name() + " " + strings.Join(args, " ")
}

// Num formats a record field: words as assembler hex, bytes as three-digit
// decimals. Unlabeled pointers use the same format through parse.Ref.
func Num(v int) string {
	if v > 255 {
		return fmt.Sprintf("0%04xh", v)
	}
	return fmt.Sprintf("%03d", v)
}

func rawByte(b byte) string {
	return fmt.Sprintf("db 0%02xh", b)
}
