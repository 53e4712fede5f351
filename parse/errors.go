package parse

import "fmt"

// OutOfRangeError reports an address outside [Base, End).
type OutOfRangeError struct {
	Addr      int
	Base, End int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("address $%04X outside image [$%04X, $%04X)", e.Addr, e.Base, e.End)
}

type UnknownOpcodeError struct {
	Addr int
	Op   byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%02X at $%04X", e.Op, e.Addr)
}

type TruncatedCommandError struct {
	Addr int
	Op   byte
	Name string
	Need int
	Have int
}

func (e *TruncatedCommandError) Error() string {
	return fmt.Sprintf("truncated command %s ($%02X) at $%04X: need %d bytes, have %d",
		e.Name, e.Op, e.Addr, e.Need, e.Have)
}

// MalformedSequenceError is raised when an envelope sequence has no valid
// terminator.
type MalformedSequenceError struct {
	Kind  SeqKind
	Start int
	Addr  int
	Value byte
	End   bool // ran off the end of the image
}

func (e *MalformedSequenceError) Error() string {
	if e.End {
		return fmt.Sprintf("unterminated %s at $%04X: image ends at $%04X", e.Kind, e.Start, e.Addr)
	}
	return fmt.Sprintf("malformed %s at $%04X: unexpected byte $%02X at $%04X", e.Kind, e.Start, e.Value, e.Addr)
}

type SignatureMismatchError struct {
	Addr int
	Want []byte
	Got  []byte
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("signature mismatch at $%04X: want %q, got %q", e.Addr, e.Want, e.Got)
}
