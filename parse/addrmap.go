package parse

// State is the role of one address in the AddressMap.
type State int

const (
	Empty        State = iota // raw byte, not claimed by anything
	Continuation              // inside an object that starts lower
	Occupied                  // start of a decoded object
)

type slot struct {
	obj  Object
	cont bool
}

// AddressMap owns every decoded object, keyed by start address, plus the
// labels assigned to them.
type AddressMap struct {
	base   int
	slots  []slot
	labels map[int]string
}

func NewAddressMap(base, end int) *AddressMap {
	n := end - base
	if n < 0 {
		n = 0
	}
	return &AddressMap{
		base:   base,
		slots:  make([]slot, n),
		labels: make(map[int]string),
	}
}

func (m *AddressMap) Base() int { return m.base }
func (m *AddressMap) End() int  { return m.base + len(m.slots) }

func (m *AddressMap) contains(addr int) bool {
	return addr >= m.base && addr < m.End()
}

// Put stores obj at addr, replacing whatever was there.
func (m *AddressMap) Put(addr int, obj Object) error {
	if !m.contains(addr) {
		return &OutOfRangeError{Addr: addr, Base: m.base, End: m.End()}
	}
	m.slots[addr-m.base] = slot{obj: obj}
	return nil
}

// At returns the object starting at addr.
func (m *AddressMap) At(addr int) (Object, bool) {
	if !m.contains(addr) {
		return nil, false
	}
	obj := m.slots[addr-m.base].obj
	return obj, obj != nil
}

func (m *AddressMap) State(addr int) State {
	if !m.contains(addr) {
		return Empty
	}
	s := m.slots[addr-m.base]
	switch {
	case s.obj != nil:
		return Occupied
	case s.cont:
		return Continuation
	}
	return Empty
}

// Owner finds the object covering addr by walking down to the closest
// occupied address.
func (m *AddressMap) Owner(addr int) (int, Object, bool) {
	if !m.contains(addr) {
		return 0, nil, false
	}
	for a := addr; a >= m.base; a-- {
		s := m.slots[a-m.base]
		if s.obj != nil {
			return a, s.obj, true
		}
		if !s.cont {
			return 0, nil, false
		}
	}
	return 0, nil, false
}

// Seal marks the bytes covered by each object as continuation slots. Objects
// that start inside an earlier object's span are dropped.
func (m *AddressMap) Seal() {
	for i := 0; i < len(m.slots); i++ {
		obj := m.slots[i].obj
		if obj == nil {
			continue
		}
		n := obj.Size()
		for j := i + 1; j < i+n && j < len(m.slots); j++ {
			m.slots[j] = slot{cont: true}
		}
		if n > 1 {
			i += n - 1
		}
	}
}

// Each calls fn for every decoded object in address order.
func (m *AddressMap) Each(fn func(addr int, obj Object)) {
	for i, s := range m.slots {
		if s.obj != nil {
			fn(m.base+i, s.obj)
		}
	}
}

func (m *AddressMap) Label(addr int) (string, bool) {
	l, ok := m.labels[addr]
	return l, ok
}

// SetLabel names addr. A label, once set, is never replaced.
func (m *AddressMap) SetLabel(addr int, label string) string {
	if l, ok := m.labels[addr]; ok {
		return l
	}
	m.labels[addr] = label
	return label
}

func (m *AddressMap) Len() int {
	n := 0
	for _, s := range m.slots {
		if s.obj != nil {
			n++
		}
	}
	return n
}
