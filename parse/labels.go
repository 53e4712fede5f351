package parse

import "fmt"

// resolveLabels fills in the label of every pointer field. It must run after
// Seal so that references into an object's span find their owner.
func (d *Decoder) resolveLabels() error {
	var objs []Object
	d.objs.Each(func(_ int, obj Object) {
		objs = append(objs, obj)
	})

	for _, obj := range objs {
		for _, r := range Refs(obj) {
			label, err := d.Resolve(r.Addr)
			if err != nil {
				return err
			}
			r.Label = label
		}
	}
	return nil
}

// Resolve returns the label for addr. Addresses inside an object become
// "label+offset"; a raw byte is promoted to a Location on first use.
// Addresses outside the image have no label.
func (d *Decoder) Resolve(addr int) (string, error) {
	if !d.img.Contains(addr) {
		return "", nil
	}

	start, obj, ok := d.objs.Owner(addr)
	if !ok {
		b, err := d.img.Byte(addr)
		if err != nil {
			return "", err
		}
		loc := &Location{Value: b}
		if err := d.objs.Put(addr, loc); err != nil {
			return "", err
		}
		start, obj = addr, loc
	}

	label := d.objs.SetLabel(start, fmt.Sprintf("%s_%x", obj.Name(), start))
	if diff := addr - start; diff > 0 {
		return fmt.Sprintf("%s+%d", label, diff), nil
	}
	return label, nil
}
