// Package parse decodes an FRS00PLAY song image into an address map of
// typed objects with symbolic cross-references.
package parse

import (
	"bytes"
	"fmt"

	"fplay/grammar"
)

type Options struct {
	// Force skips the signature check.
	Force bool
}

type ParsedImage struct {
	Image  *Image
	Header HeaderPointers
	Map    *AddressMap
	Bounds *Boundaries
}

// Decoder holds the state of one decode run.
type Decoder struct {
	img    *Image
	gram   *grammar.Grammar
	bounds *Boundaries
	objs   *AddressMap
	force  bool
}

func NewDecoder(img *Image, g *grammar.Grammar) *Decoder {
	return &Decoder{
		img:    img,
		gram:   g,
		bounds: NewBoundaries(img.Base, img.End()),
		objs:   NewAddressMap(img.Base, img.End()),
	}
}

func Parse(raw []byte, g *grammar.Grammar, opts Options) (*ParsedImage, error) {
	img := NewImage(raw)
	if !opts.Force {
		if err := CheckSignature(img); err != nil {
			return nil, err
		}
	}
	d := NewDecoder(img, g)
	d.force = opts.Force
	return d.Run()
}

func CheckSignature(img *Image) error {
	n := len(Signature)
	if avail := img.End() - HdrSignature; avail < n {
		n = avail
	}
	var got []byte
	if n > 0 {
		s, err := img.Record(HdrSignature, n)
		if err != nil {
			return err
		}
		s.ReadBytes(&got, n)
	}
	if !bytes.Equal(got, Signature) {
		return &SignatureMismatchError{Addr: HdrSignature, Want: Signature, Got: got}
	}
	return nil
}

// Run decodes the whole image. The table order matters: each table's extent
// depends on the boundaries found by the tables decoded before it.
func (d *Decoder) Run() (*ParsedImage, error) {
	hdr, err := ExtractPointers(d.img)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	slots := []struct {
		at   int
		kind SlotKind
		ptr  int
	}{
		{HdrFMTable, SlotFMTable, hdr.FMTable},
		{HdrNoteLenTable, SlotNoteLenTable, hdr.NoteLenTable},
		{HdrVolTable, SlotVolTable, hdr.VolTable},
		{HdrPitchTable, SlotPitchTable, hdr.PitchTable},
		{HdrSongTable, SlotSongTable, hdr.SongTable},
		{HdrDrumTable, SlotDrumTable, hdr.DrumTable},
	}
	for _, s := range slots {
		if err := d.objs.Put(s.at, &PointerSlot{Kind: s.kind, Target: Ref{Addr: s.ptr}}); err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
	}

	d.bounds.Add(d.img.Base, d.img.End())
	d.bounds.Add(hdr.All()...)

	steps := []struct {
		name string
		run  func() error
	}{
		{"fm instrument table", func() error { return d.decodeFMTable(hdr.FMTable) }},
		{"volume envelope table", func() error { return d.decodePointerTable(hdr.VolTable, SlotVolSeq, d.DecodeVolSeq) }},
		{"pitch envelope table", func() error { return d.decodePointerTable(hdr.PitchTable, SlotPitchSeq, d.DecodePitchSeq) }},
		{"note length table", func() error { return d.decodeNoteLenTable(hdr.NoteLenTable) }},
		{"drum macro table", func() error { return d.decodeDrumTable(hdr.DrumTable) }},
		{"song table", func() error { return d.decodeSongTable(hdr.SongTable) }},
		{"signature", d.decodeSignature},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	d.objs.Seal()
	if err := d.resolveLabels(); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}

	return &ParsedImage{
		Image:  d.img,
		Header: hdr,
		Map:    d.objs,
		Bounds: d.bounds,
	}, nil
}
