// Package cmft ties together the cube geometry, spherical-harmonic, filter,
// and scheduler packages into the three operations a caller actually wants:
// specular radiance prefiltering, SH-based irradiance filtering, and raw SH
// projection (spec.md §6).
package cmft

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/filter"
	"github.com/Carmen-Shannon/cmft/gpu"
	"github.com/Carmen-Shannon/cmft/image"
	"github.com/Carmen-Shannon/cmft/scheduler"
	"github.com/Carmen-Shannon/cmft/sh"
)

// Kind categorizes a cmft.Error, mirroring the escalation ladder in spec.md
// §7: a GPU that fails with CPU fallback available degrades gracefully;
// a GPU that fails with zero CPU threads configured escalates to
// InvalidParameter, since the caller asked for a configuration that cannot
// make progress.
type Kind int

const (
	InvalidInput Kind = iota
	InvalidParameter
	DeviceUnavailable
	DeviceFailed
	AllocationFailed
)

// Error is returned by every exported operation in this package.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cmft: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("cmft: %s", e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// RadianceOptions configures ImageRadianceFilter.
type RadianceOptions struct {
	DstFaceSize   int
	MipCount      int // 0 means derive from DstFaceSize (log2(DstFaceSize)+1)
	ExcludeBase   bool
	LightingModel filter.LightingModel
	GlossScale    float32
	GlossBias     float32
	EdgeFixup     cubemap.EdgeFixup
	NumCPUThreads int         // 0 means runtime.NumCPU() when GPU is nil, and no CPU workers when GPU is set
	GPU           gpu.Backend // nil disables GPU acceleration
	Progress      *scheduler.Progress
}

func (o RadianceOptions) withDefaults() RadianceOptions {
	if o.NumCPUThreads == 0 && o.GPU == nil {
		o.NumCPUThreads = runtime.NumCPU()
	}
	if o.MipCount == 0 {
		size := o.DstFaceSize
		count := 1
		for size > 1 {
			size /= 2
			count++
		}
		o.MipCount = count
	}
	return o
}

// ImageRadianceFilter produces a specular-convolved mip chain from src,
// whose base level (mip 0) is treated as the unfiltered environment
// (spec.md §4.3, §6).
func ImageRadianceFilter(src *image.Image, opts RadianceOptions) (*image.Image, error) {
	if src == nil || src.FaceSize() <= 0 {
		return nil, newError(InvalidInput, "source image is empty", nil)
	}
	opts = opts.withDefaults()
	if opts.DstFaceSize <= 0 {
		return nil, newError(InvalidParameter, "DstFaceSize must be positive", nil)
	}
	if opts.NumCPUThreads == 0 && opts.GPU == nil {
		return nil, newError(InvalidParameter, "need at least one CPU thread or a GPU backend", nil)
	}

	dst, err := image.NewImage(opts.DstFaceSize, opts.MipCount)
	if err != nil {
		return nil, wrapImageErr(err)
	}

	normals := cubemap.BuildNormalTable(src.FaceSize(), opts.EdgeFixup)
	srcFilter := &filter.Source{FaceSize: src.FaceSize(), Img: src, Normals: normals}

	mipStart := 0
	if opts.ExcludeBase {
		mipStart = 1
		copyFace0(src, dst)
	}

	tl := scheduler.NewTaskList(opts.MipCount)
	for mip := mipStart; mip < opts.MipCount; mip++ {
		mipFaceSize := dst.Mips[mip].FaceSize
		params := filter.ComputeMipParams(mip, opts.MipCount, mipFaceSize, opts.LightingModel, opts.GlossScale, opts.GlossBias)
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			tl.Set(mip, f, scheduler.FaceTask{Mip: mip, Face: f, Params: params})
		}
	}

	schedErr := scheduler.Run(dst, srcFilter, normals, tl, scheduler.Options{
		NumCPUThreads: opts.NumCPUThreads,
		GPU:           opts.GPU,
		Progress:      opts.Progress,
		EdgeFixup:     opts.EdgeFixup,
	})
	if schedErr != nil {
		return nil, wrapSchedulerErr(schedErr)
	}

	collapseTopMip(dst)

	return dst, nil
}

func copyFace0(src *image.Image, dst *image.Image) {
	n := dst.Mips[0].FaceSize
	srcN := src.FaceSize()
	ratio := srcN / n
	if ratio < 1 {
		ratio = 1
	}
	inv := 1 / float32(ratio*ratio)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		srcFace := src.Face(0, f)
		dstFace := dst.Face(0, f)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				var sum [4]float32
				for sy := y * ratio; sy < (y+1)*ratio; sy++ {
					for sx := x * ratio; sx < (x+1)*ratio; sx++ {
						c := srcFace.At(sx, sy)
						sum[0], sum[1], sum[2], sum[3] = sum[0]+c[0], sum[1]+c[1], sum[2]+c[2], sum[3]+c[3]
					}
				}
				dstFace.Set(x, y, [4]float32{sum[0] * inv, sum[1] * inv, sum[2] * inv, sum[3] * inv})
			}
		}
	}
}

// collapseTopMip handles the 1x1 top-of-pyramid special case (spec.md
// §4.3): when the last mip's face size is 1, its six texels are averaged
// together and the result is broadcast back to all six faces, since a
// single-texel cubemap has no meaningful per-face distinction left.
func collapseTopMip(dst *image.Image) {
	last := dst.MipCount() - 1
	if dst.Mips[last].FaceSize != 1 {
		return
	}

	var sum [4]float32
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		c := dst.Face(last, f).At(0, 0)
		sum[0] += c[0]
		sum[1] += c[1]
		sum[2] += c[2]
		sum[3] += c[3]
	}
	avg := [4]float32{sum[0] / 6, sum[1] / 6, sum[2] / 6, sum[3] / 6}

	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		dst.Face(last, f).Set(0, 0, avg)
	}
}

// ImageShCoeffs projects src's base level onto the 25-term real SH basis.
func ImageShCoeffs(src *image.Image) (sh.Coefficients, error) {
	if src == nil || src.FaceSize() <= 0 {
		return sh.Coefficients{}, newError(InvalidInput, "source image is empty", nil)
	}

	normals := cubemap.BuildNormalTable(src.FaceSize(), cubemap.FixupNone)
	coeffs := sh.ProjectCubemap(normals, func(f cubemap.Face, x, y int) [3]float32 {
		c := src.Face(0, f).At(x, y)
		return [3]float32{c[0], c[1], c[2]}
	})
	return coeffs, nil
}

// ImageIrradianceFilterSh produces a diffuse irradiance cubemap of the given
// face size by projecting src onto SH and reconstructing at every
// destination texel's direction, far cheaper than a full specular
// convolution at the lowest mip (spec.md §4.2).
func ImageIrradianceFilterSh(src *image.Image, dstFaceSize int) (*image.Image, error) {
	if dstFaceSize <= 0 {
		return nil, newError(InvalidParameter, "dstFaceSize must be positive", nil)
	}

	coeffs, err := ImageShCoeffs(src)
	if err != nil {
		return nil, err
	}

	dst, err := image.NewImage(dstFaceSize, 1)
	if err != nil {
		return nil, wrapImageErr(err)
	}

	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := dst.Face(0, f)
		for y := 0; y < dstFaceSize; y++ {
			for x := 0; x < dstFaceSize; x++ {
				u, v := cubemap.TexelCenter(x, y, dstFaceSize)
				dir := cubemap.TexelCoordToDir(u, v, f)
				c := sh.Irradiance(coeffs, dir)
				face.Set(x, y, [4]float32{c[0], c[1], c[2], 1})
			}
		}
	}
	return dst, nil
}

func wrapImageErr(err error) error {
	if ie, ok := err.(*image.Error); ok {
		switch ie.Kind {
		case image.ErrAllocationFailed:
			return newError(AllocationFailed, ie.Msg, nil)
		default:
			return newError(InvalidInput, ie.Msg, nil)
		}
	}
	return newError(InvalidInput, err.Error(), nil)
}

func wrapSchedulerErr(err error) error {
	if se, ok := err.(*scheduler.Error); ok {
		switch se.Kind {
		case scheduler.ErrNoWorkers:
			return newError(InvalidParameter, se.Msg, nil)
		case scheduler.ErrDeviceFailed:
			return newError(DeviceFailed, se.Msg, nil)
		}
	}
	return newError(DeviceFailed, err.Error(), nil)
}
