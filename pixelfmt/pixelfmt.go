// Package pixelfmt converts between the engine's internal linear RGBA32F
// representation and the on-disk encodings cubemaps are commonly stored in:
// Radiance RGBE, IEEE half float, gamma-encoded sRGB, and RGBM (spec.md §3,
// §6). Every codec converts one pixel at a time so callers in package
// container never need their own pixel-format math.
package pixelfmt

import (
	"math"

	"github.com/x448/float16"
)

// Format names one of the encodings a container reader/writer may need to
// translate to or from the internal RGBA32F buffer.
type Format int

const (
	RGBA32F Format = iota
	RGBE
	Half
	SRGB
	RGBM
)

// String returns the format's conventional short name.
func (f Format) String() string {
	switch f {
	case RGBA32F:
		return "RGBA32F"
	case RGBE:
		return "RGBE"
	case Half:
		return "RGBA16F"
	case SRGB:
		return "RGBA8 (sRGB)"
	case RGBM:
		return "RGBM"
	default:
		return "unknown"
	}
}

// BytesPerPixel returns the on-disk size of one encoded pixel.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGBA32F:
		return 16
	case RGBE:
		return 4
	case Half:
		return 8
	case SRGB:
		return 4
	case RGBM:
		return 4
	default:
		return 0
	}
}

// EncodeRGBE packs a linear RGB color into the Radiance shared-exponent
// format: each of the three mantissas is normalized against the largest
// channel, then a single shared byte exponent is stored alongside them. No
// ecosystem codec for this format was found in the retrieved examples; see
// DESIGN.md.
func EncodeRGBE(r, g, b float32) [4]byte {
	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if max <= 1e-32 {
		return [4]byte{0, 0, 0, 0}
	}

	mantissa, exp := math.Frexp(float64(max))
	scale := mantissa * 256.0 / float64(max)

	return [4]byte{
		clampByte(float64(r) * scale),
		clampByte(float64(g) * scale),
		clampByte(float64(b) * scale),
		byte(exp + 128),
	}
}

// DecodeRGBE unpacks a Radiance shared-exponent pixel back to linear RGB.
func DecodeRGBE(px [4]byte) (r, g, b float32) {
	if px[3] == 0 {
		return 0, 0, 0
	}
	f := math.Ldexp(1.0, int(px[3])-(128+8))
	r = float32(float64(px[0]) * f)
	g = float32(float64(px[1]) * f)
	b = float32(float64(px[2]) * f)
	return
}

func clampByte(x float64) byte {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}

// EncodeHalf packs a linear RGBA color into four IEEE-754 half-precision
// floats, using x448/float16 for the bit conversion.
func EncodeHalf(c [4]float32) [4]uint16 {
	return [4]uint16{
		float16.Fromfloat32(c[0]).Bits(),
		float16.Fromfloat32(c[1]).Bits(),
		float16.Fromfloat32(c[2]).Bits(),
		float16.Fromfloat32(c[3]).Bits(),
	}
}

// DecodeHalf unpacks four half-precision floats back to float32.
func DecodeHalf(bits [4]uint16) [4]float32 {
	return [4]float32{
		float16.Frombits(bits[0]).Float32(),
		float16.Frombits(bits[1]).Float32(),
		float16.Frombits(bits[2]).Float32(),
		float16.Frombits(bits[3]).Float32(),
	}
}

// gamma is the exponent used by the simplified power-law sRGB approximation
// (2.2 rather than the piecewise IEC 61966-2-1 curve), matching what the
// original implementation uses for its RGBA8 "sRGB" container format.
const gamma = 2.2

// EncodeSRGB gamma-encodes a linear RGBA color into 8-bit-per-channel sRGB.
func EncodeSRGB(c [4]float32) [4]byte {
	return [4]byte{
		clampByte(math.Pow(float64(c[0]), 1/gamma) * 255),
		clampByte(math.Pow(float64(c[1]), 1/gamma) * 255),
		clampByte(math.Pow(float64(c[2]), 1/gamma) * 255),
		clampByte(float64(c[3]) * 255),
	}
}

// DecodeSRGB converts an 8-bit sRGB pixel back to linear RGBA.
func DecodeSRGB(px [4]byte) [4]float32 {
	return [4]float32{
		float32(math.Pow(float64(px[0])/255, gamma)),
		float32(math.Pow(float64(px[1])/255, gamma)),
		float32(math.Pow(float64(px[2])/255, gamma)),
		float32(px[3]) / 255,
	}
}

// rgbmRange is the maximum representable linear value in the RGBM encoding.
const rgbmRange = 6.0

// EncodeRGBM packs linear RGB into 8-bit RGBM: the multiplier channel
// recovers range beyond what three 8-bit channels could hold alone by
// storing color/multiplier normalized to [0, 1] and the multiplier itself.
func EncodeRGBM(r, g, b float32) [4]byte {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	if m > rgbmRange {
		m = rgbmRange
	}
	if m <= 1e-6 {
		return [4]byte{0, 0, 0, 0}
	}
	mNorm := m / rgbmRange

	return [4]byte{
		clampByte(float64(r/m) * 255),
		clampByte(float64(g/m) * 255),
		clampByte(float64(b/m) * 255),
		clampByte(float64(mNorm) * 255),
	}
}

// DecodeRGBM unpacks an 8-bit RGBM pixel back to linear RGB.
func DecodeRGBM(px [4]byte) (r, g, b float32) {
	m := float32(px[3]) / 255 * rgbmRange
	r = float32(px[0]) / 255 * m
	g = float32(px[1]) / 255 * m
	b = float32(px[2]) / 255 * m
	return
}
