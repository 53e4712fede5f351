package parse

import "golang.org/x/crypto/cryptobyte"

const (
	HeaderBase = 0x4000

	HdrFMTable      = HeaderBase + 0x0
	HdrNoteLenTable = HeaderBase + 0x2
	HdrVolTable     = HeaderBase + 0x4
	HdrPitchTable   = HeaderBase + 0x6
	HdrSongTable    = HeaderBase + 0x8
	HdrDrumTable    = HeaderBase + 0xA
	HdrSignature    = HeaderBase + 0xC
)

// Signature is the format tag stored at HdrSignature.
var Signature = []byte(">MAIKO-HOSHINO ")

func ReadWord(data []byte, offset int) uint16 {
	return uint16(data[offset]) | uint16(data[offset+1])<<8
}

// Image is a loaded song file mapped at its load address. Addresses below
// Base read as padding and are never decoded.
type Image struct {
	Base int
	raw  []byte
}

func NewImage(raw []byte) *Image {
	return &Image{Base: HeaderBase, raw: raw}
}

// End is the first address past the image.
func (img *Image) End() int {
	return img.Base + len(img.raw)
}

func (img *Image) Contains(addr int) bool {
	return addr >= img.Base && addr < img.End()
}

func (img *Image) Byte(addr int) (byte, error) {
	if !img.Contains(addr) {
		return 0, &OutOfRangeError{Addr: addr, Base: img.Base, End: img.End()}
	}
	return img.raw[addr-img.Base], nil
}

func (img *Image) Word(addr int) (uint16, error) {
	if !img.Contains(addr) || !img.Contains(addr+1) {
		return 0, &OutOfRangeError{Addr: addr, Base: img.Base, End: img.End()}
	}
	return ReadWord(img.raw, addr-img.Base), nil
}

// Bytes returns the n bytes at addr without copying.
func (img *Image) Bytes(addr, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if !img.Contains(addr) || !img.Contains(addr+n-1) {
		return nil, &OutOfRangeError{Addr: addr, Base: img.Base, End: img.End()}
	}
	off := addr - img.Base
	return img.raw[off : off+n], nil
}

// Record returns a reader over the n bytes at addr.
func (img *Image) Record(addr, n int) (cryptobyte.String, error) {
	b, err := img.Bytes(addr, n)
	if err != nil {
		return nil, err
	}
	return cryptobyte.String(b), nil
}

// HeaderPointers are the six table pointers at the start of the image.
type HeaderPointers struct {
	FMTable      int
	NoteLenTable int
	VolTable     int
	PitchTable   int
	SongTable    int
	DrumTable    int
}

func (h HeaderPointers) All() []int {
	return []int{h.FMTable, h.NoteLenTable, h.VolTable, h.PitchTable, h.SongTable, h.DrumTable}
}

func ExtractPointers(img *Image) (HeaderPointers, error) {
	var h HeaderPointers
	fields := []struct {
		at  int
		dst *int
	}{
		{HdrFMTable, &h.FMTable},
		{HdrNoteLenTable, &h.NoteLenTable},
		{HdrVolTable, &h.VolTable},
		{HdrPitchTable, &h.PitchTable},
		{HdrSongTable, &h.SongTable},
		{HdrDrumTable, &h.DrumTable},
	}
	for _, f := range fields {
		w, err := img.Word(f.at)
		if err != nil {
			return HeaderPointers{}, err
		}
		*f.dst = int(w)
	}
	return h, nil
}

// readLE16 reads a little-endian word; cryptobyte only knows big-endian.
func readLE16(s *cryptobyte.String, out *uint16) bool {
	var lo, hi uint8
	if !s.ReadUint8(&lo) || !s.ReadUint8(&hi) {
		return false
	}
	*out = uint16(lo) | uint16(hi)<<8
	return true
}

func readInt8(s *cryptobyte.String, out *int8) bool {
	var v uint8
	if !s.ReadUint8(&v) {
		return false
	}
	*out = int8(v)
	return true
}
