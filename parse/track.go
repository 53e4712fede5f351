package parse

// WalkTrack decodes the event stream at start until a final command,
// descending into every control-transfer target first. The address map is
// the visited set: occupied targets are not walked again.
func (d *Decoder) WalkTrack(start int) error {
	if d.objs.State(start) == Occupied {
		return nil
	}

	for pos := start; ; {
		if obj, ok := d.objs.At(pos); ok {
			if _, seen := obj.(*Event); seen {
				return nil
			}
		}

		ev, err := d.DecodeEvent(pos)
		if err != nil {
			return err
		}
		if err := d.objs.Put(pos, ev); err != nil {
			return err
		}

		if target, ok := ev.Target(); ok && d.objs.State(target.Addr) != Occupied {
			if err := d.WalkTrack(target.Addr); err != nil {
				return err
			}
		}

		if ev.Final() {
			return nil
		}
		pos += ev.Length
	}
}
