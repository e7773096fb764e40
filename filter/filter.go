// Package filter implements the cosine-power importance-weighted radiance
// convolution that produces one specular mip level of a filtered cubemap
// (spec.md §4.3): determining which source texels a destination texel's
// filter cone can see, including bleed across face edges, and integrating
// their contribution.
package filter

import (
	"math"

	"github.com/Carmen-Shannon/cmft/cubemap"
)

// LightingModel selects how the raw cosine power derived from a mip's
// glossiness is reshaped before it is used as the filter's weighting
// exponent (spec.md §4.3).
type LightingModel int

const (
	Phong LightingModel = iota
	PhongBRDF
	Blinn
	BlinnBRDF
)

// ApplyLightingModel maps a reference specular power to the exponent actually
// used by the filter kernel for the given lighting model.
func ApplyLightingModel(specularPower float32, model LightingModel) float32 {
	switch model {
	case PhongBRDF:
		return specularPower + 1
	case Blinn:
		return specularPower / 4
	case BlinnBRDF:
		return specularPower/4 + 1
	default: // Phong
		return specularPower
	}
}

// SpecularPowerForMip maps a mip level to a reference specular (cosine)
// power given the total mip count and a gloss scale/bias pair, following a
// log2 falloff from mip 0 (mirror-like) to the last mip (fully diffuse).
func SpecularPowerForMip(mip, mipCount int, glossScale, glossBias float32) float32 {
	denom := float32(mipCount) - 1.0000001
	glossiness := float32(1) - float32(mip)/denom
	if glossiness < 0 {
		glossiness = 0
	}
	return float32(math.Pow(2, float64(glossScale*glossiness+glossBias)))
}

// CosinePowerFilterAngle returns the half-angle, in radians, beyond which
// cos(theta)^specularPower has decayed below 1e-5 and can be safely excluded
// from the filter footprint.
func CosinePowerFilterAngle(specularPower float32) float32 {
	if specularPower <= 0 {
		return math.Pi / 2
	}
	return float32(math.Acos(math.Pow(1e-5, 1/float64(specularPower))))
}

// MipParams bundles the per-mip constants derived once before dispatching
// per-face, per-texel filter tasks.
type MipParams struct {
	Mip              int
	MipFaceSize      int
	SpecularPower    float32
	SpecularAngle    float32 // cos(filterAngle), the cutoff used by the weight test
	FilterSize       float32 // half-width, in face-local UV units, of the filter footprint
}

// ComputeMipParams derives the filter footprint and specular exponent for one
// destination mip level.
func ComputeMipParams(mip, mipCount, mipFaceSize int, lightingModel LightingModel, glossScale, glossBias float32) MipParams {
	minAngle := float32(math.Atan2(1, float64(mipFaceSize)))
	maxAngle := float32(math.Pi / 2)

	toFilterSize := float32(1) / (minAngle * float32(mipFaceSize) * 2)

	specularPowerRef := SpecularPowerForMip(mip, mipCount, glossScale, glossBias)
	specularPower := ApplyLightingModel(specularPowerRef, lightingModel)

	filterAngle := CosinePowerFilterAngle(specularPower)
	if filterAngle < minAngle {
		filterAngle = minAngle
	}
	if filterAngle > maxAngle {
		filterAngle = maxAngle
	}

	cosAngle := float32(math.Cos(float64(filterAngle)))
	if cosAngle < 0 {
		cosAngle = 0
	}

	texelSize := float32(1) / float32(mipFaceSize)
	filterSize := filterAngle * toFilterSize
	if filterSize < texelSize {
		filterSize = texelSize
	}

	return MipParams{
		Mip:           mip,
		MipFaceSize:   mipFaceSize,
		SpecularPower: specularPower,
		SpecularAngle: cosAngle,
		FilterSize:    filterSize,
	}
}

// AABB is an axis-aligned box in face-local [0, 1]^2 UV space. An empty AABB
// has Min > Max on at least one axis and contributes nothing to a footprint.
type AABB struct {
	MinU, MinV float32
	MaxU, MaxV float32
}

// EmptyAABB returns an AABB that contains no points.
func EmptyAABB() AABB {
	return AABB{MinU: math.MaxFloat32, MinV: math.MaxFloat32, MaxU: -math.MaxFloat32, MaxV: -math.MaxFloat32}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.MinU > b.MaxU || b.MinV > b.MaxV
}

// Add grows the box to include point (u, v).
func (b AABB) Add(u, v float32) AABB {
	if u < b.MinU {
		b.MinU = u
	}
	if v < b.MinV {
		b.MinV = v
	}
	if u > b.MaxU {
		b.MaxU = u
	}
	if v > b.MaxV {
		b.MaxV = v
	}
	return b
}

// Clamp restricts the box to [0, 1]^2, collapsing to empty if it lies
// entirely outside.
func (b AABB) Clamp() AABB {
	if b.MinU > 1 || b.MinV > 1 || b.MaxU < 0 || b.MaxV < 0 {
		return EmptyAABB()
	}
	b.MinU = clamp01(b.MinU)
	b.MinV = clamp01(b.MinV)
	b.MaxU = clamp01(b.MaxU)
	b.MaxV = clamp01(b.MaxV)
	return b
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Footprint is the set of per-face AABBs a filter kernel must integrate over
// for one destination texel: the hit face's own neighbourhood plus whatever
// bleeds across its four edges onto adjoining faces.
type Footprint struct {
	Areas [cubemap.NumFaces]AABB
}

// NewFootprint returns a footprint with every face area empty.
func NewFootprint() Footprint {
	var fp Footprint
	for i := range fp.Areas {
		fp.Areas[i] = EmptyAABB()
	}
	return fp
}

// neighbourBleed names one of the four edges of the hit face, along with how
// far (in UV units) the filter radius overshoots that edge.
type neighbourBleed struct {
	edge   cubemap.Edge
	amount float32
}

// DetermineFilterArea computes the per-face footprint of a filter of half
// width filterSize centered at face-local (uu, vv) on face hitFace,
// including bleed across edges onto neighbouring faces (spec.md §4.3,
// grounded on determineFilterArea in the original implementation).
func DetermineFilterArea(hitFace cubemap.Face, uu, vv, filterSize float32) Footprint {
	fp := NewFootprint()

	fp.Areas[hitFace] = AABB{
		MinU: uu - filterSize, MinV: vv - filterSize,
		MaxU: uu + filterSize, MaxV: vv + filterSize,
	}.Clamp()

	bleeds := [4]neighbourBleed{
		{cubemap.Left, filterSize - uu},
		{cubemap.Right, uu + filterSize - 1},
		{cubemap.Top, filterSize - vv},
		{cubemap.Bottom, vv + filterSize - 1},
	}

	for _, nb := range bleeds {
		if nb.amount <= 0 {
			continue
		}
		walkBleed(&fp, hitFace, nb.edge, nb.amount, uu, vv, filterSize)
	}

	return fp
}

// walkBleed walks across one or more neighbouring faces, one unit of bleed
// at a time, adding the appropriate strip to each neighbour's AABB.
func walkBleed(fp *Footprint, hitFace cubemap.Face, side cubemap.Edge, bleedAmount, uu, vv, filterSize float32) {
	var bbMin, bbMax float32
	switch side {
	case cubemap.Left, cubemap.Right:
		bbMin, bbMax = vv-filterSize, vv+filterSize
	default:
		bbMin, bbMax = uu-filterSize, uu+filterSize
	}
	bbMin = clamp01(bbMin)
	bbMax = clamp01(bbMax)

	face := hitFace
	remaining := bleedAmount

	for remaining > 0 {
		n := cubemap.Neighbour(face, side)

		if side == n.Edge || 3 == int(side)+int(n.Edge) {
			bbMin, bbMax = 1-bbMax, 1-bbMin
		}

		step := remaining
		if step > 1 {
			step = 1
		}

		switch n.Edge {
		case cubemap.Left:
			fp.Areas[n.Face] = fp.Areas[n.Face].Add(0, bbMin).Add(step, bbMax).Clamp()
		case cubemap.Right:
			fp.Areas[n.Face] = fp.Areas[n.Face].Add(1-step, bbMin).Add(1, bbMax).Clamp()
		case cubemap.Top:
			fp.Areas[n.Face] = fp.Areas[n.Face].Add(bbMin, 0).Add(bbMax, step).Clamp()
		case cubemap.Bottom:
			fp.Areas[n.Face] = fp.Areas[n.Face].Add(bbMin, 1-step).Add(bbMax, 1).Clamp()
		}

		// Continue out through the edge opposite the one just crossed
		// (Left<->Right, Top<->Bottom).
		face = n.Face
		side = cubemap.Edge(int(n.Edge) ^ 1)
		remaining -= 1
	}
}
