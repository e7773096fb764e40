package cubemap

import "math"

// EdgeFixup selects how face-local (u, v) coordinates are remapped before
// being turned into a direction, to compensate for the lack of seamless
// cube-map sampling on hardware that bilinear-samples across face edges.
type EdgeFixup int

const (
	// FixupNone leaves (u, v) unmodified.
	FixupNone EdgeFixup = iota
	// FixupWarp compresses samples near face edges (spec.md §4.1).
	FixupWarp
)

// WarpFactor computes the 'a' coefficient used by the warp edge-fixup:
// a = faceSize^2 / (faceSize-1)^3, with a = 1 for faceSize == 1.
func WarpFactor(faceSize int) float32 {
	if faceSize <= 1 {
		return 1
	}
	fs := float32(faceSize)
	fsmo := fs - 1
	return (fs * fs) / (fsmo * fsmo * fsmo)
}

// TexelCoordToDir converts face-local coordinates (u, v) in [-1, 1] on face f
// to a unit direction. u and v must already be center-addressed.
func TexelCoordToDir(u, v float32, f Face) [3]float32 {
	b := basis[f]
	dir := [3]float32{
		b[0][0]*u + b[1][0]*v + b[2][0],
		b[0][1]*u + b[1][1]*v + b[2][1],
		b[0][2]*u + b[1][2]*v + b[2][2],
	}
	invLen := float32(1.0) / float32(math.Sqrt(float64(dir[0]*dir[0]+dir[1]*dir[1]+dir[2]*dir[2])))
	dir[0] *= invLen
	dir[1] *= invLen
	dir[2] *= invLen
	return dir
}

// TexelCoordToDirWarp is TexelCoordToDir with the warp edge-fixup applied to
// (u, v) first: u' = u + warp*u^3, v' = v + warp*v^3.
func TexelCoordToDirWarp(u, v float32, f Face, warp float32) [3]float32 {
	u = warp*u*u*u + u
	v = warp*v*v*v + v
	return TexelCoordToDir(u, v, f)
}

// TexelCenter returns the center face-local (u, v) of texel (x, y) on a face
// of side N, before any edge fixup: u = 2*(x+0.5)/N - 1.
func TexelCenter(x, y, n int) (u, v float32) {
	nf := float32(n)
	u = 2*(float32(x)+0.5)/nf - 1
	v = 2*(float32(y)+0.5)/nf - 1
	return
}

// DirToFaceUV maps a direction to the face whose axis has the largest
// absolute component, and to face-local (u, v) remapped into [0, 1].
func DirToFaceUV(dir [3]float32) (u, v float32, f Face) {
	ax, ay, az := abs32(dir[0]), abs32(dir[1]), abs32(dir[2])
	max := ax
	if ay > max {
		max = ay
	}
	if az > max {
		max = az
	}

	switch {
	case max == ax:
		if dir[0] >= 0 {
			f = PosX
		} else {
			f = NegX
		}
	case max == ay:
		if dir[1] >= 0 {
			f = PosY
		} else {
			f = NegY
		}
	default:
		if dir[2] >= 0 {
			f = PosZ
		} else {
			f = NegZ
		}
	}

	invMax := 1.0 / max
	face := [3]float32{dir[0] * invMax, dir[1] * invMax, dir[2] * invMax}

	b := basis[f]
	u = (b[0][0]*face[0]+b[0][1]*face[1]+b[0][2]*face[2] + 1) * 0.5
	v = (b[1][0]*face[0]+b[1][1]*face[1]+b[1][2]*face[2] + 1) * 0.5
	return
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// areaElement is A(x, y) = atan2(x*y, sqrt(x^2+y^2+1)), the antiderivative
// used to compute texel solid angle by evaluating it at the four corners of
// a texel's footprint (spec.md §4.1).
func areaElement(x, y float32) float32 {
	return float32(math.Atan2(float64(x*y), math.Sqrt(float64(x*x+y*y+1))))
}

// TexelSolidAngle returns the solid angle subtended by a texel whose center
// face-local coordinates are (u, v) on a face with inverse size invFaceSize
// (i.e. 1/N).
func TexelSolidAngle(u, v, invFaceSize float32) float32 {
	x0 := u - invFaceSize
	x1 := u + invFaceSize
	y0 := v - invFaceSize
	y1 := v + invFaceSize

	return areaElement(x1, y1) - areaElement(x0, y1) - areaElement(x1, y0) + areaElement(x0, y0)
}

// TexelSample is one entry of a NormalTable: the unit direction through a
// texel's center and that texel's solid angle.
type TexelSample struct {
	Dir        [3]float32
	SolidAngle float32
}

// NormalTable is a per-(face size, edge fixup) table of NumFaces*N*N
// TexelSample entries, built once and shared read-only by L2 and L3.
type NormalTable struct {
	FaceSize int
	Fixup    EdgeFixup
	Samples  []TexelSample // length NumFaces*FaceSize*FaceSize, face-major, row-major within a face
}

// BuildNormalTable constructs the direction/solid-angle table for a cube of
// the given face size and edge-fixup mode.
func BuildNormalTable(faceSize int, fixup EdgeFixup) *NormalTable {
	t := &NormalTable{
		FaceSize: faceSize,
		Fixup:    fixup,
		Samples:  make([]TexelSample, NumFaces*faceSize*faceSize),
	}

	invFaceSize := float32(1) / float32(faceSize)
	var warp float32
	if fixup == FixupWarp {
		warp = WarpFactor(faceSize)
	}

	idx := 0
	for f := Face(0); f < NumFaces; f++ {
		for y := 0; y < faceSize; y++ {
			for x := 0; x < faceSize; x++ {
				u, v := TexelCenter(x, y, faceSize)

				var dir [3]float32
				if fixup == FixupWarp {
					dir = TexelCoordToDirWarp(u, v, f, warp)
				} else {
					dir = TexelCoordToDir(u, v, f)
				}

				solidAngle := TexelSolidAngle(u, v, invFaceSize)

				t.Samples[idx] = TexelSample{Dir: dir, SolidAngle: solidAngle}
				idx++
			}
		}
	}

	return t
}

// At returns the sample for texel (x, y) on face f.
func (t *NormalTable) At(f Face, x, y int) TexelSample {
	n := t.FaceSize
	return t.Samples[int(f)*n*n+y*n+x]
}

// FaceSamples returns the slice of samples belonging to face f.
func (t *NormalTable) FaceSamples(f Face) []TexelSample {
	n := t.FaceSize
	start := int(f) * n * n
	return t.Samples[start : start+n*n]
}
