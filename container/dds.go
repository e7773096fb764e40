package container

import (
	"encoding/binary"
	"io"

	"github.com/Carmen-Shannon/cmft/layout"
)

// DDS has no maintained single-image codec among the retrieved examples'
// dependencies (the format family is inherently cubemap/array-aware, which
// none of the pack's image libraries model), so the minimal header plus DX10
// extension header needed to carry one uncompressed RGBA32F surface is
// written directly. This writes/reads the single flat plane passed in, with
// one mip level and no cubemap flags.
const (
	ddsMagic       = 0x20534444 // "DDS "
	ddsHeaderSize  = 124
	ddsPixelFormatSize = 32

	ddsFlagsRequired = 0x1 | 0x2 | 0x4 | 0x1000 | 0x80000 // CAPS|HEIGHT|WIDTH|PIXELFORMAT|LINEARSIZE
	ddpfFourCC       = 0x4
	dx10FourCC       = 0x30315844 // "DX10"

	dxgiFormatR32G32B32A32Float = 2
	d3d10ResourceDimensionTexture2D = 3
)

func encodeDDS(w io.Writer, p *layout.Plane) error {
	header := make([]byte, 4+ddsHeaderSize)
	binary.LittleEndian.PutUint32(header[0:], ddsMagic)
	binary.LittleEndian.PutUint32(header[4:], ddsHeaderSize)
	binary.LittleEndian.PutUint32(header[8:], ddsFlagsRequired)
	binary.LittleEndian.PutUint32(header[12:], uint32(p.Height))
	binary.LittleEndian.PutUint32(header[16:], uint32(p.Width))
	binary.LittleEndian.PutUint32(header[20:], uint32(p.Width*16)) // pitch: 16 bytes/pixel RGBA32F
	binary.LittleEndian.PutUint32(header[24:], 0)                  // depth
	binary.LittleEndian.PutUint32(header[28:], 1)                  // mip count

	pf := header[76:]
	binary.LittleEndian.PutUint32(pf[0:], ddsPixelFormatSize)
	binary.LittleEndian.PutUint32(pf[4:], ddpfFourCC)
	binary.LittleEndian.PutUint32(pf[8:], dx10FourCC)

	binary.LittleEndian.PutUint32(header[108:], 0x1000) // caps: TEXTURE

	dx10 := make([]byte, 20)
	binary.LittleEndian.PutUint32(dx10[0:], dxgiFormatR32G32B32A32Float)
	binary.LittleEndian.PutUint32(dx10[4:], d3d10ResourceDimensionTexture2D)
	binary.LittleEndian.PutUint32(dx10[8:], 0) // misc flag
	binary.LittleEndian.PutUint32(dx10[12:], 1) // array size
	binary.LittleEndian.PutUint32(dx10[16:], 0) // misc flags2

	if _, err := w.Write(header); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: dds: write header", Err: err}
	}
	if _, err := w.Write(dx10); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: dds: write dx10 header", Err: err}
	}

	buf := make([]byte, len(p.Pixels)*4)
	for i, v := range p.Pixels {
		binary.LittleEndian.PutUint32(buf[i*4:], float32bits(v))
	}
	if _, err := w.Write(buf); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: dds: write pixel data", Err: err}
	}
	return nil
}

func decodeDDS(r io.Reader) (*layout.Plane, error) {
	header := make([]byte, 4+ddsHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: dds: truncated header", Err: err}
	}
	if binary.LittleEndian.Uint32(header[0:]) != ddsMagic {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: dds: bad magic"}
	}

	height := int(binary.LittleEndian.Uint32(header[12:]))
	width := int(binary.LittleEndian.Uint32(header[16:]))

	fourCC := binary.LittleEndian.Uint32(header[76+8:])
	if fourCC == dx10FourCC {
		dx10 := make([]byte, 20)
		if _, err := io.ReadFull(r, dx10); err != nil {
			return nil, &Error{Kind: ErrMalformed, Msg: "container: dds: truncated dx10 header", Err: err}
		}
	}

	n := width * height * 4
	buf := make([]byte, n*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: dds: truncated pixel data", Err: err}
	}

	p := &layout.Plane{Width: width, Height: height, Pixels: make([]float32, n)}
	for i := range p.Pixels {
		p.Pixels[i] = float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return p, nil
}
