// Package sh implements order-5 real spherical-harmonic projection and
// reconstruction, used by cmft.ImageShCoeffs and cmft.ImageIrradianceFilterSh
// to approximate diffuse irradiance convolution with 25 coefficients per
// color channel instead of a full per-texel integral (spec.md §4.2).
package sh

import (
	"math"

	"github.com/Carmen-Shannon/cmft/cubemap"
)

// NumCoefficients is the number of real SH basis functions through band 4.
const NumCoefficients = 25

// Coefficients holds one SH projection of an RGB signal: 25 basis weights
// per channel, indexed [coefficient][channel]. Accumulated in double
// precision, mirroring cubemapShCoeffs's use of double in the original
// implementation, since the projection sums across potentially millions of
// texels and a running float32 sum loses precision long before that.
type Coefficients [NumCoefficients][3]float64

// basis constants, from the real spherical harmonic normalization
// sqrt((2l+1)/4pi * (l-m)!/(l+m)!) folded with the Condon-Shortley-free real
// basis convention used throughout the reference implementation.
var (
	k0  = 0.282095 // l0
	k1  = 0.488603 // l1
	k20 = 1.092548
	k21 = 0.315392
	k22 = 0.546274
	k30 = 0.590044
	k31 = 2.890611
	k32 = 0.457046
	k33 = 0.373176
	k34 = 1.445306
	k40 = 2.503343
	k41 = 1.770131
	k42 = 0.946175
	k43 = 0.669047
	k44 = 0.105786
	k45 = 0.473087
	k46 = 0.625836
)

// EvalBasis5 evaluates the 25 real SH basis functions (bands 0 through 4) at
// unit direction dir, in double precision; dir itself is supplied in the
// float32 precision the rest of the geometry pipeline uses and widened here
// at the boundary.
func EvalBasis5(dir [3]float32) [NumCoefficients]float64 {
	x, y, z := float64(dir[0]), float64(dir[1]), float64(dir[2])
	x2, y2, z2 := x*x, y*y, z*z

	var b [NumCoefficients]float64

	// band 0
	b[0] = k0

	// band 1
	b[1] = -k1 * y
	b[2] = k1 * z
	b[3] = -k1 * x

	// band 2
	b[4] = k20 * x * y
	b[5] = -k20 * y * z
	b[6] = k21 * (3*z2 - 1)
	b[7] = -k20 * x * z
	b[8] = k22 * (x2 - y2)

	// band 3
	b[9] = -k30 * y * (3*x2 - y2)
	b[10] = k31 * x * y * z
	b[11] = -k32 * y * (5*z2 - 1)
	b[12] = k33 * z * (5*z2 - 3)
	b[13] = -k32 * x * (5*z2 - 1)
	b[14] = k34 * z * (x2 - y2)
	b[15] = -k30 * x * (x2 - 3*y2)

	// band 4
	b[16] = k40 * x * y * (x2 - y2)
	b[17] = -k41 * y * z * (3*x2 - y2)
	b[18] = k42 * x * y * (7*z2 - 1)
	b[19] = -k43 * y * z * (7*z2 - 3)
	b[20] = k44 * (35*z2*z2 - 30*z2 + 3)
	b[21] = -k43 * x * z * (7*z2 - 3)
	b[22] = k45 * (x2 - y2) * (7*z2 - 1)
	b[23] = -k41 * x * z * (x2 - 3*y2)
	b[24] = k46 * (x2*(x2-3*y2) - y2*(3*x2-y2))

	return b
}

// ProjectCubemap projects the radiance stored in a filtered cubemap face set
// onto the 25-term real SH basis. faceSample returns the RGB radiance
// stored at texel (x, y) of face f. normals supplies the direction and solid
// angle for every texel.
//
// The per-texel contribution is color*basis*solidAngle, accumulated in
// float64; the accumulated coefficients are rescaled by
// 4*pi / sum(solidAngle) so quantization error in the solid-angle table does
// not bias total energy (mirrors cubemapShCoeffs in the original
// implementation). color and solidAngle are widened to float64 at the point
// they enter the running sum.
func ProjectCubemap(normals *cubemap.NormalTable, faceSample func(f cubemap.Face, x, y int) [3]float32) Coefficients {
	var coeffs Coefficients
	var weightAccum float64

	n := normals.FaceSize
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		samples := normals.FaceSamples(f)
		idx := 0
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				s := samples[idx]
				idx++

				color := faceSample(f, x, y)
				basis := EvalBasis5(s.Dir)
				solidAngle := float64(s.SolidAngle)
				weightAccum += solidAngle

				for k := 0; k < NumCoefficients; k++ {
					w := basis[k] * solidAngle
					coeffs[k][0] += float64(color[0]) * w
					coeffs[k][1] += float64(color[1]) * w
					coeffs[k][2] += float64(color[2]) * w
				}
			}
		}
	}

	if weightAccum == 0 {
		return coeffs
	}

	norm := 4 * math.Pi / weightAccum
	for k := 0; k < NumCoefficients; k++ {
		coeffs[k][0] *= norm
		coeffs[k][1] *= norm
		coeffs[k][2] *= norm
	}
	return coeffs
}

// bandWeight holds the Ramamoorthi-Hanrahan convolution weights applied to
// each band when reconstructing irradiance from radiance SH coefficients.
// Band 3 is zero because the cosine-lobe transfer function has no odd-degree
// component beyond band 1.
var bandWeight = [5]float64{
	1.0,
	2.0 / 3.0,
	1.0 / 4.0,
	0,
	-1.0 / 24.0,
}

func weightForCoeff(k int) float64 {
	switch {
	case k == 0:
		return bandWeight[0]
	case k <= 3:
		return bandWeight[1]
	case k <= 8:
		return bandWeight[2]
	case k <= 15:
		return bandWeight[3]
	default:
		return bandWeight[4]
	}
}

// Irradiance reconstructs the diffuse irradiance arriving from direction dir
// given SH coefficients of the environment's radiance, accumulating in
// float64 and narrowing to float32 only on return to match the rest of the
// image pipeline's color representation.
func Irradiance(coeffs Coefficients, dir [3]float32) [3]float32 {
	basis := EvalBasis5(dir)

	var out [3]float64
	for k := 0; k < NumCoefficients; k++ {
		w := weightForCoeff(k)
		if w == 0 {
			continue
		}
		out[0] += coeffs[k][0] * basis[k] * w
		out[1] += coeffs[k][1] * basis[k] * w
		out[2] += coeffs[k][2] * basis[k] * w
	}
	return [3]float32{float32(out[0]), float32(out[1]), float32(out[2])}
}
