// Package grammar describes the byte code of FRS00PLAY event streams: which
// opcode is which command, what parameters it carries and which values are
// notes or drum triggers.
package grammar

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ArgTarget is the parameter name that holds an address. On control-transfer
// commands it is the destination.
const ArgTarget = "addr"

var notePrefixes = []string{"c", "cs", "d", "ds", "e", "f", "fs", "g", "gs", "a", "as", "b"}

type Param struct {
	Name   string
	Width  int
	Signed bool
	Flag   byte
}

type Command struct {
	Opcode   byte
	Name     string
	Final    bool
	Control  bool
	Property bool
	Params   []Param
}

// Length is the encoded size of the command including its opcode byte.
func (c *Command) Length() int {
	n := 1
	for _, p := range c.Params {
		n += p.Width
	}
	return n
}

type Range struct {
	Lo, Hi byte
}

func (r Range) Contains(v byte) bool {
	return v >= r.Lo && v <= r.Hi
}

type Grammar struct {
	Notes Range
	Drums Range

	buckets map[int]map[byte]*Command
	lengths []int
}

// New builds a grammar from command definitions. Definitions are grouped by
// encoded length; within one length a later definition of the same opcode
// replaces an earlier one.
func New(notes, drums Range, cmds []Command) *Grammar {
	g := &Grammar{
		Notes:   notes,
		Drums:   drums,
		buckets: make(map[int]map[byte]*Command),
	}
	for i := range cmds {
		cmd := cmds[i]
		size := cmd.Length()
		bucket, ok := g.buckets[size]
		if !ok {
			bucket = make(map[byte]*Command)
			g.buckets[size] = bucket
			g.lengths = append(g.lengths, size)
		}
		bucket[cmd.Opcode] = &cmd
	}
	sort.Sort(sort.Reverse(sort.IntSlice(g.lengths)))
	return g
}

// Lookup finds the command for op, trying the longest encodings first.
func (g *Grammar) Lookup(op byte) (*Command, bool) {
	for _, size := range g.lengths {
		if cmd, ok := g.buckets[size][op]; ok {
			return cmd, true
		}
	}
	return nil, false
}

// NoteName returns the note spelled by v, or false when v is not a note.
func (g *Grammar) NoteName(v byte) (string, bool) {
	if !g.Notes.Contains(v) {
		return "", false
	}
	n := int(v - g.Notes.Lo)
	return fmt.Sprintf("%s%d", notePrefixes[n%12], n/12), true
}

// Drum returns the drum index triggered by v.
func (g *Grammar) Drum(v byte) (int, bool) {
	if !g.Drums.Contains(v) {
		return 0, false
	}
	return int(v - g.Drums.Lo), true
}

// Commands returns every definition ordered by length (longest first) and
// then by opcode.
func (g *Grammar) Commands() []*Command {
	var out []*Command
	for _, size := range g.lengths {
		bucket := g.buckets[size]
		ops := make([]int, 0, len(bucket))
		for op := range bucket {
			ops = append(ops, int(op))
		}
		sort.Ints(ops)
		for _, op := range ops {
			out = append(out, bucket[byte(op)])
		}
	}
	return out
}

type file struct {
	Notes    []string            `json:"notes"`
	Drums    []string            `json:"drums"`
	Commands map[string][]string `json:"commands"`
}

func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse reads a grammar document. Command keys are numbers in any base
// strconv understands; "0x80" and "0x080" are both opcode 0x80 and may carry
// definitions of different lengths.
func Parse(data []byte) (*Grammar, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("grammar: %w", err)
	}

	notes, err := parseRange("notes", f.Notes)
	if err != nil {
		return nil, err
	}
	drums, err := parseRange("drums", f.Drums)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(f.Commands))
	for k := range f.Commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cmds []Command
	for _, key := range keys {
		def := f.Commands[key]
		if len(def) == 0 {
			continue
		}
		op, err := parseByte(key)
		if err != nil {
			return nil, fmt.Errorf("grammar: command %q: %w", key, err)
		}
		cmd, err := parseCommand(op, def)
		if err != nil {
			return nil, fmt.Errorf("grammar: command %q: %w", key, err)
		}
		cmds = append(cmds, cmd)
	}

	return New(notes, drums, cmds), nil
}

func parseCommand(op byte, def []string) (Command, error) {
	name, flags, _ := strings.Cut(def[0], ",")
	cmd := Command{
		Opcode:   op,
		Name:     strings.TrimSpace(name),
		Final:    strings.Contains(flags, "f"),
		Control:  strings.Contains(flags, "c"),
		Property: strings.Contains(flags, "p"),
	}
	for _, p := range def[1:] {
		pname, pflag, _ := strings.Cut(p, ",")
		pflag = strings.TrimSpace(pflag)
		if pflag == "" {
			pflag = "b"
		}
		param := Param{Name: strings.TrimSpace(pname), Width: 1, Flag: pflag[0]}
		switch pflag {
		case "b", "c":
		case "s":
			param.Signed = true
		case "w":
			param.Width = 2
		default:
			return Command{}, fmt.Errorf("parameter %q: unknown type %q", pname, pflag)
		}
		cmd.Params = append(cmd.Params, param)
	}
	return cmd, nil
}

func parseRange(what string, v []string) (Range, error) {
	if len(v) != 2 {
		return Range{}, fmt.Errorf("grammar: %s: want [lo, hi], got %d values", what, len(v))
	}
	lo, err := parseByte(v[0])
	if err != nil {
		return Range{}, fmt.Errorf("grammar: %s: %w", what, err)
	}
	hi, err := parseByte(v[1])
	if err != nil {
		return Range{}, fmt.Errorf("grammar: %s: %w", what, err)
	}
	if hi < lo {
		return Range{}, fmt.Errorf("grammar: %s: end %#x < start %#x", what, hi, lo)
	}
	return Range{Lo: lo, Hi: hi}, nil
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}
