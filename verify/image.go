package verify

import (
	"fmt"

	"fplay/parse"
)

// Image checks the layout of a decoded image: header slots in place, header
// pointers registered as boundaries, every object inside the image, and the
// bytes each object covers marked as its continuation.
func Image(p *parse.ParsedImage) error {
	m := p.Map
	r := &report{stage: StageLayout}

	if m.Base() != p.Image.Base || m.End() != p.Image.End() {
		return Fail(StageLayout, "address map [$%04X, $%04X) does not match image [$%04X, $%04X)",
			m.Base(), m.End(), p.Image.Base, p.Image.End())
	}

	for _, at := range []int{parse.HdrFMTable, parse.HdrNoteLenTable, parse.HdrVolTable,
		parse.HdrPitchTable, parse.HdrSongTable, parse.HdrDrumTable} {
		obj, ok := m.At(at)
		if !ok {
			r.add("header slot $%04X not decoded", at)
			continue
		}
		if _, isSlot := obj.(*parse.PointerSlot); !isSlot {
			r.add("header slot $%04X holds %s", at, obj.Name())
		}
	}

	if p.Bounds != nil {
		for _, ptr := range p.Header.All() {
			if p.Image.Contains(ptr) && !p.Bounds.Contains(ptr) {
				r.add("header pointer $%04X is not a boundary", ptr)
			}
		}
	}

	owner := -1
	ownerEnd := m.Base()
	for addr := m.Base(); addr < m.End(); addr++ {
		switch m.State(addr) {
		case parse.Occupied:
			if addr < ownerEnd {
				r.at(addr, "object starts inside $%04X", owner)
			}
			obj, _ := m.At(addr)
			if obj.Size() <= 0 {
				r.at(addr, "%s has size %d", obj.Name(), obj.Size())
			}
			if addr+obj.Size() > m.End() {
				r.at(addr, "%s runs past the end of the image", obj.Name())
			}
			owner, ownerEnd = addr, addr+obj.Size()

		case parse.Continuation:
			if addr >= ownerEnd {
				r.at(addr, "continuation without an owner")
			}

		case parse.Empty:
			if addr < ownerEnd {
				r.at(addr, "inside $%04X but not marked", owner)
			}
		}
	}

	return r.result("decoded image has inconsistent spans")
}

// Labels checks that every reference into the image carries a label and that
// the label names the object it points into.
func Labels(p *parse.ParsedImage) error {
	m := p.Map
	r := &report{stage: StageLabels}

	m.Each(func(addr int, obj parse.Object) {
		for _, ref := range parse.Refs(obj) {
			if !p.Image.Contains(ref.Addr) {
				if ref.Label != "" {
					r.at(addr, "%s labels outside address $%04X", ref.Label, ref.Addr)
				}
				continue
			}
			if ref.Label == "" {
				r.at(addr, "%s reference to $%04X has no label", obj.Name(), ref.Addr)
				continue
			}
			start, _, ok := m.Owner(ref.Addr)
			if !ok {
				r.at(addr, "%s points at undecoded $%04X", ref.Label, ref.Addr)
				continue
			}
			label, ok := m.Label(start)
			want := label
			if diff := ref.Addr - start; diff > 0 {
				want = fmt.Sprintf("%s+%d", label, diff)
			}
			if !ok || ref.Label != want {
				r.at(addr, "reference %s, want %s", ref.Label, want)
			}
		}
	})

	return r.result("unresolved references")
}

// All runs every check in order and returns the first failure.
func All(p *parse.ParsedImage) error {
	if err := Image(p); err != nil {
		return err
	}
	return Labels(p)
}
