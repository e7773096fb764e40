package container

import (
	"encoding/binary"
	"io"

	"github.com/Carmen-Shannon/cmft/layout"
)

// KTX (v1), like DDS, has no maintained single-image codec among the
// retrieved examples' dependencies, so the fixed 64-byte header defined by
// the Khronos KTX spec is written directly, carrying one uncompressed
// GL_RGBA32F surface.
var ktxIdentifier = [12]byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x31, 0x31, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

const (
	glRGBA            = 0x1908
	glRGBA32F         = 0x8814
	glFloat           = 0x1406
	ktxHeaderFieldCnt = 13
)

func encodeKTX(w io.Writer, p *layout.Plane) error {
	header := make([]byte, 12+ktxHeaderFieldCnt*4)
	copy(header[0:12], ktxIdentifier[:])

	fields := []uint32{
		0x04030201, // endianness
		glFloat,    // glType
		4,          // glTypeSize
		glRGBA,     // glFormat
		glRGBA32F,  // glInternalFormat
		glRGBA,     // glBaseInternalFormat
		uint32(p.Width),
		uint32(p.Height),
		0, // pixelDepth
		0, // numberOfArrayElements
		1, // numberOfFaces
		1, // numberOfMipmapLevels
		0, // bytesOfKeyValueData
	}
	for i, v := range fields {
		binary.LittleEndian.PutUint32(header[12+i*4:], v)
	}

	if _, err := w.Write(header); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: ktx: write header", Err: err}
	}

	imageSize := uint32(len(p.Pixels) * 4)
	sizeBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuf, imageSize)
	if _, err := w.Write(sizeBuf); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: ktx: write image size", Err: err}
	}

	buf := make([]byte, len(p.Pixels)*4)
	for i, v := range p.Pixels {
		binary.LittleEndian.PutUint32(buf[i*4:], float32bits(v))
	}
	if _, err := w.Write(buf); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: ktx: write pixel data", Err: err}
	}
	return nil
}

func decodeKTX(r io.Reader) (*layout.Plane, error) {
	header := make([]byte, 12+ktxHeaderFieldCnt*4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: ktx: truncated header", Err: err}
	}
	for i := 0; i < 12; i++ {
		if header[i] != ktxIdentifier[i] {
			return nil, &Error{Kind: ErrMalformed, Msg: "container: ktx: bad identifier"}
		}
	}

	width := int(binary.LittleEndian.Uint32(header[12+6*4:]))
	height := int(binary.LittleEndian.Uint32(header[12+7*4:]))
	keyValueBytes := int(binary.LittleEndian.Uint32(header[12+12*4:]))

	if keyValueBytes > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(keyValueBytes)); err != nil {
			return nil, &Error{Kind: ErrMalformed, Msg: "container: ktx: truncated key/value data", Err: err}
		}
	}

	sizeBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, sizeBuf); err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: ktx: truncated image size", Err: err}
	}

	n := width * height * 4
	buf := make([]byte, n*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: ktx: truncated pixel data", Err: err}
	}

	p := &layout.Plane{Width: width, Height: height, Pixels: make([]float32, n)}
	for i := range p.Pixels {
		p.Pixels[i] = float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return p, nil
}
