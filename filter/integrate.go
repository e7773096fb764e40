package filter

import (
	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/image"
)

// Source is the read side of a source cubemap as seen by the filter kernel:
// a fixed face size (mip 0 of the environment being filtered), direct pixel
// access, and the direction/solid-angle table for every source texel
// (already built with whatever edge-fixup the caller requested), decoupling
// the kernel from package image's allocation details.
type Source struct {
	FaceSize int
	Img      *image.Image
	Normals  *cubemap.NormalTable
}

// sampleNearest returns the color of the texel nearest to face-local (u, v)
// on face f of the source image, used as the point-sample fallback when a
// footprint's accumulated weight underflows to zero.
func (s *Source) sampleNearest(f cubemap.Face, u, v float32) [3]float32 {
	n := s.FaceSize
	x := int((u*0.5 + 0.5) * float32(n))
	y := int((v*0.5 + 0.5) * float32(n))
	if x < 0 {
		x = 0
	}
	if x >= n {
		x = n - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= n {
		y = n - 1
	}
	c := s.Img.Face(0, f).At(x, y)
	return [3]float32{c[0], c[1], c[2]}
}

// Task is one destination texel's filter work: which source face/UV region
// to integrate, the normal and solid angle to weight against, and the mip
// parameters governing the cutoff and exponent.
type Task struct {
	DstFace cubemap.Face
	DstX    int
	DstY    int
	Dir     [3]float32
	Params  MipParams
}

// Integrate evaluates one destination texel by walking src's footprint for
// Dir and accumulating cosine-power-weighted radiance, sampling source-texel
// direction and solid angle from src.Normals so the result honors whatever
// edge-fixup that table was built with. It is the CPU reference kernel;
// gpu.Backend implementations perform the same accumulation per-tile
// on-device against the same uploaded table (spec.md §4.3, grounded on
// processFilterArea/radianceFilter in the original implementation).
func Integrate(src *Source, t Task) [4]float32 {
	uu, vv, hitFace := cubemap.DirToFaceUV(t.Dir)
	fp := DetermineFilterArea(hitFace, uu, vv, t.Params.FilterSize)

	var accum [4]float32 // rgb + weight

	n := src.FaceSize

	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		area := fp.Areas[f]
		if area.IsEmpty() {
			continue
		}

		minX := int(area.MinU * float32(n-1))
		maxX := int(area.MaxU * float32(n-1))
		minY := int(area.MinV * float32(n-1))
		maxY := int(area.MaxV * float32(n-1))
		if minX < 0 {
			minX = 0
		}
		if minY < 0 {
			minY = 0
		}
		if maxX >= n {
			maxX = n - 1
		}
		if maxY >= n {
			maxY = n - 1
		}

		face := src.Img.Face(0, f)
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				sample := src.Normals.At(f, x, y)

				dot := t.Dir[0]*sample.Dir[0] + t.Dir[1]*sample.Dir[1] + t.Dir[2]*sample.Dir[2]
				if dot < t.Params.SpecularAngle {
					continue
				}

				weight := sample.SolidAngle * powf(dot, t.Params.SpecularPower)

				c := face.At(x, y)
				accum[0] += c[0] * weight
				accum[1] += c[1] * weight
				accum[2] += c[2] * weight
				accum[3] += weight
			}
		}
	}

	if accum[3] != 0 {
		accum[0] /= accum[3]
		accum[1] /= accum[3]
		accum[2] /= accum[3]
	} else {
		c := src.sampleNearest(hitFace, uu*2-1, vv*2-1)
		accum[0], accum[1], accum[2] = c[0], c[1], c[2]
	}

	return [4]float32{accum[0], accum[1], accum[2], 1}
}

func powf(base, exp float32) float32 {
	if exp == 1 {
		return base
	}
	return float32pow(base, exp)
}
