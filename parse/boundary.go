package parse

import "sort"

// Boundaries holds every address known to start some structure. Tables
// without a length field end at the next boundary, so the set only grows and
// later tables see everything discovered by earlier ones.
type Boundaries struct {
	base, end int
	addrs     []int
}

func NewBoundaries(base, end int) *Boundaries {
	return &Boundaries{base: base, end: end}
}

func (b *Boundaries) Add(addrs ...int) {
	for _, a := range addrs {
		i := sort.SearchInts(b.addrs, a)
		if i < len(b.addrs) && b.addrs[i] == a {
			continue
		}
		b.addrs = append(b.addrs, 0)
		copy(b.addrs[i+1:], b.addrs[i:])
		b.addrs[i] = a
	}
}

// Contains reports whether addr is known to start a structure.
func (b *Boundaries) Contains(addr int) bool {
	i := sort.SearchInts(b.addrs, addr)
	return i < len(b.addrs) && b.addrs[i] == addr
}

// sorted returns the boundaries in ascending order.
func (b *Boundaries) sorted() []int {
	out := make([]int, len(b.addrs))
	copy(out, b.addrs)
	return out
}

func (b *Boundaries) Len() int {
	return len(b.addrs)
}

// Extent returns the distance from start to the closest boundary above it.
// It reads the current set on every call.
func (b *Boundaries) Extent(start int) (int, error) {
	if start < b.base || start >= b.end {
		return 0, &OutOfRangeError{Addr: start, Base: b.base, End: b.end}
	}
	i := sort.SearchInts(b.addrs, start+1)
	if i == len(b.addrs) {
		return 0, &OutOfRangeError{Addr: start, Base: b.base, End: b.end}
	}
	return b.addrs[i] - start, nil
}
