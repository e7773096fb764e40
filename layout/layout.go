// Package layout converts between a cubemap's six-face representation and
// the single-image layouts commonly used to store or preview one: a
// horizontal/vertical cross, a horizontal/vertical strip, a latlong
// (equirectangular) panorama, or an octahedral map (spec.md §4.1, §6).
package layout

import (
	"fmt"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/image"
)

// Kind names a single-image cubemap layout.
type Kind int

const (
	HorizontalCross Kind = iota
	VerticalCross
	HorizontalStrip
	VerticalStrip
	FaceList
	LatLong
	Octant
)

// Plane is a flat RGBA32F image in one of the Kind layouts, as read from or
// written to a single container image.
type Plane struct {
	Width, Height int
	Pixels        []float32 // Width*Height*4, row-major
}

func newPlane(w, h int) *Plane {
	return &Plane{Width: w, Height: h, Pixels: make([]float32, w*h*4)}
}

func (p *Plane) at(x, y int) [4]float32 {
	i := (y*p.Width + x) * 4
	return [4]float32{p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2], p.Pixels[i+3]}
}

func (p *Plane) set(x, y int, c [4]float32) {
	i := (y*p.Width + x) * 4
	p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2], p.Pixels[i+3] = c[0], c[1], c[2], c[3]
}

// crossCell gives the (col, row) position of each face within a 4x3 (or
// 3x4, transposed) cross grid. The unused two corners of the grid are left
// blank.
var crossCell = [cubemap.NumFaces][2]int{
	cubemap.PosX: {2, 1},
	cubemap.NegX: {0, 1},
	cubemap.PosY: {1, 0},
	cubemap.NegY: {1, 2},
	cubemap.PosZ: {1, 1},
	cubemap.NegZ: {3, 1},
}

// FromCubemap flattens mip 0 of img into the given single-image layout.
func FromCubemap(img *image.Image, kind Kind) (*Plane, error) {
	if img.MipCount() == 0 {
		return nil, fmt.Errorf("layout: image has no mip levels")
	}
	n := img.FaceSize()

	switch kind {
	case HorizontalCross, VerticalCross:
		return crossFromCubemap(img, n, kind), nil
	case HorizontalStrip:
		p := newPlane(n*cubemap.NumFaces, n)
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			blit(img.Face(0, f), p, int(f)*n, 0)
		}
		return p, nil
	case VerticalStrip:
		p := newPlane(n, n*cubemap.NumFaces)
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			blit(img.Face(0, f), p, 0, int(f)*n)
		}
		return p, nil
	case FaceList:
		p := newPlane(n, n*cubemap.NumFaces)
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			blit(img.Face(0, f), p, 0, int(f)*n)
		}
		return p, nil
	case LatLong:
		return projectFromCubemap(img, n*2, n, cubemap.DirFromLatLong), nil
	case Octant:
		return projectFromCubemap(img, n, n, cubemap.DirFromOctant), nil
	default:
		return nil, fmt.Errorf("layout: unknown layout kind %d", kind)
	}
}

func crossFromCubemap(img *image.Image, n int, kind Kind) *Plane {
	var p *Plane
	if kind == HorizontalCross {
		p = newPlane(n*4, n*3)
	} else {
		p = newPlane(n*3, n*4)
	}

	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		col, row := crossCell[f][0], crossCell[f][1]
		if kind == VerticalCross {
			col, row = row, col
		}
		blit(img.Face(0, f), p, col*n, row*n)
	}
	return p
}

func blit(face *image.Face, dst *Plane, ox, oy int) {
	for y := 0; y < face.Height; y++ {
		for x := 0; x < face.Width; x++ {
			dst.set(ox+x, oy+y, face.At(x, y))
		}
	}
}

// projectFromCubemap samples the cubemap once per destination pixel via
// dirFromUV, used for latlong and octant layouts where destination pixels do
// not map 1:1 onto a single source face.
func projectFromCubemap(img *image.Image, w, h int, dirFromUV func(u, v float32) [3]float32) *Plane {
	p := newPlane(w, h)
	for y := 0; y < h; y++ {
		v := (float32(y) + 0.5) / float32(h)
		for x := 0; x < w; x++ {
			u := (float32(x) + 0.5) / float32(w)
			dir := dirFromUV(u, v)
			c := sampleCubemapNearest(img, dir)
			p.set(x, y, c)
		}
	}
	return p
}

func sampleCubemapNearest(img *image.Image, dir [3]float32) [4]float32 {
	u, v, f := cubemap.DirToFaceUV(dir)
	face := img.Face(0, f)
	n := face.Width
	x := int(u * float32(n))
	y := int(v * float32(n))
	if x >= n {
		x = n - 1
	}
	if y >= n {
		y = n - 1
	}
	return face.At(x, y)
}

// ToCubemap reconstructs a cubemap of the given face size from a
// single-image layout plane.
func ToCubemap(p *Plane, kind Kind, faceSize int) (*image.Image, error) {
	img, err := image.NewImage(faceSize, 1)
	if err != nil {
		return nil, err
	}

	switch kind {
	case HorizontalCross, VerticalCross:
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			col, row := crossCell[f][0], crossCell[f][1]
			if kind == VerticalCross {
				col, row = row, col
			}
			unblit(p, img.Face(0, f), col*faceSize, row*faceSize)
		}
	case HorizontalStrip:
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			unblit(p, img.Face(0, f), int(f)*faceSize, 0)
		}
	case VerticalStrip, FaceList:
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			unblit(p, img.Face(0, f), 0, int(f)*faceSize)
		}
	case LatLong:
		unprojectToCubemap(p, img, cubemap.LatLongFromDir)
	case Octant:
		unprojectToCubemap(p, img, cubemap.OctantFromDir)
	default:
		return nil, fmt.Errorf("layout: unknown layout kind %d", kind)
	}

	return img, nil
}

func unblit(src *Plane, dst *image.Face, ox, oy int) {
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			dst.Set(x, y, src.at(ox+x, oy+y))
		}
	}
}

func unprojectToCubemap(src *Plane, img *image.Image, uvFromDir func(dir [3]float32) (float32, float32)) {
	n := img.FaceSize()
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := img.Face(0, f)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				u, v := cubemap.TexelCenter(x, y, n)
				dir := cubemap.TexelCoordToDir(u, v, f)
				su, sv := uvFromDir(dir)
				sx := int(su * float32(src.Width))
				sy := int(sv * float32(src.Height))
				if sx >= src.Width {
					sx = src.Width - 1
				}
				if sy >= src.Height {
					sy = src.Height - 1
				}
				face.Set(x, y, src.at(sx, sy))
			}
		}
	}
}
