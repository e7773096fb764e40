// Package image defines the in-memory cubemap data model shared by every
// other package: a flat RGBA32F pixel buffer per face per mip level, plus
// the bookkeeping needed to address it (spec.md §3).
package image

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/cmft/cubemap"
)

// ErrKind identifies a category of image-construction failure, used by
// cmft.Error to map into the Kind taxonomy described in spec.md §7.
type ErrKind int

const (
	ErrInvalidInput ErrKind = iota
	ErrAllocationFailed
)

// Error is returned by image construction and access functions.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// MaxMipLevels bounds the number of mips any single Image may hold, mirroring
// the fixed-size mip array in the original implementation.
const MaxMipLevels = 16

// Face is one face's pixel data for one mip level: Width == Height and
// Pixels holds Width*Height*4 float32 RGBA components, row-major.
type Face struct {
	Width, Height int
	Pixels        []float32
}

// At returns the RGBA value at (x, y).
func (f *Face) At(x, y int) [4]float32 {
	i := (y*f.Width + x) * 4
	return [4]float32{f.Pixels[i], f.Pixels[i+1], f.Pixels[i+2], f.Pixels[i+3]}
}

// Set writes the RGBA value at (x, y).
func (f *Face) Set(x, y int, c [4]float32) {
	i := (y*f.Width + x) * 4
	f.Pixels[i], f.Pixels[i+1], f.Pixels[i+2], f.Pixels[i+3] = c[0], c[1], c[2], c[3]
}

// Mip is the six faces belonging to one mip level. All six faces of a mip
// share the same size.
type Mip struct {
	FaceSize int
	Faces    [cubemap.NumFaces]*Face
}

// Image is a full cubemap: a chain of mip levels, each half the face size of
// the one before, stored internally as linear RGBA32F (spec.md §3). Codecs
// in package pixelfmt convert to and from this representation at the I/O
// boundary.
type Image struct {
	Mips []Mip
}

// NewImage allocates an image with the given base face size and mip count.
// mipCount == 0 means "base level only". Returns ErrInvalidInput for a
// non-positive face size, or ErrAllocationFailed if allocation overflows
// (faceSize so large that Width*Height*4 does not fit in an int).
func NewImage(faceSize, mipCount int) (*Image, error) {
	if faceSize <= 0 {
		return nil, newError(ErrInvalidInput, "image: face size must be positive, got %d", faceSize)
	}
	if mipCount <= 0 {
		mipCount = 1
	}
	if mipCount > MaxMipLevels {
		return nil, newError(ErrInvalidInput, "image: mip count %d exceeds maximum %d", mipCount, MaxMipLevels)
	}

	img := &Image{Mips: make([]Mip, mipCount)}

	size := faceSize
	for m := 0; m < mipCount; m++ {
		if size < 1 {
			size = 1
		}

		if size > math.MaxInt/4/size {
			return nil, newError(ErrAllocationFailed, "image: face size %d overflows pixel buffer size", size)
		}

		mip := Mip{FaceSize: size}
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			mip.Faces[f] = &Face{
				Width:  size,
				Height: size,
				Pixels: make([]float32, size*size*4),
			}
		}
		img.Mips[m] = mip

		size /= 2
	}

	return img, nil
}

// FaceSize returns the base (mip 0) face size.
func (img *Image) FaceSize() int {
	if len(img.Mips) == 0 {
		return 0
	}
	return img.Mips[0].FaceSize
}

// MipCount returns the number of mip levels present.
func (img *Image) MipCount() int {
	return len(img.Mips)
}

// Face returns the face data for the given mip level and face index, or nil
// if out of range.
func (img *Image) Face(mip int, f cubemap.Face) *Face {
	if mip < 0 || mip >= len(img.Mips) {
		return nil
	}
	return img.Mips[mip].Faces[f]
}

// Clone deep-copies the image.
func (img *Image) Clone() *Image {
	out := &Image{Mips: make([]Mip, len(img.Mips))}
	for m, mip := range img.Mips {
		out.Mips[m] = Mip{FaceSize: mip.FaceSize}
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			src := mip.Faces[f]
			dst := &Face{Width: src.Width, Height: src.Height, Pixels: make([]float32, len(src.Pixels))}
			copy(dst.Pixels, src.Pixels)
			out.Mips[m].Faces[f] = dst
		}
	}
	return out
}
