// Package mipgen generates a mip chain for a cubemap's base level, either by
// block-averaging (matching the original implementation's "exclude base"
// downsample used ahead of radiance filtering) or by a general-purpose
// resampler for arbitrary non-power-of-two resizes needed by layout
// conversions (spec.md §4.3, §6).
package mipgen

import (
	stdimage "image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/image"
)

// GenerateBoxChain fills every mip level of img beyond level 0 by
// block-averaging groups of src texels, halving face size at each level.
// This is the "exclude base" downsample the original implementation applies
// before radiance filtering begins on mip 1, generalized to fill an entire
// chain rather than a single level.
func GenerateBoxChain(img *image.Image) {
	for m := 1; m < img.MipCount(); m++ {
		dstSize := img.Mips[m].FaceSize
		srcSize := img.Mips[m-1].FaceSize
		ratio := srcSize / dstSize
		if ratio < 1 {
			ratio = 1
		}

		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			src := img.Face(m-1, f)
			dst := img.Face(m, f)
			boxDownsample(src, dst, ratio)
		}
	}
}

func boxDownsample(src, dst *image.Face, ratio int) {
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			var sum [4]float32
			count := 0
			for sy := y * ratio; sy < (y+1)*ratio && sy < src.Height; sy++ {
				for sx := x * ratio; sx < (x+1)*ratio && sx < src.Width; sx++ {
					c := src.At(sx, sy)
					sum[0] += c[0]
					sum[1] += c[1]
					sum[2] += c[2]
					sum[3] += c[3]
					count++
				}
			}
			if count == 0 {
				count = 1
			}
			dst.Set(x, y, [4]float32{sum[0] / float32(count), sum[1] / float32(count), sum[2] / float32(count), sum[3] / float32(count)})
		}
	}
}

// ResizeRGBA resizes a flat RGBA32F plane (as produced by package layout) to
// a new width/height using a high-quality resampler, used for arbitrary
// (non power-of-two, non-halving) layout-to-layout conversions where box
// downsampling does not apply cleanly.
func ResizeRGBA(pixels []float32, srcW, srcH, dstW, dstH int) []float32 {
	srcImg := stdimage.NewRGBA64(stdimage.Rect(0, 0, srcW, srcH))
	for y := 0; y < srcH; y++ {
		for x := 0; x < srcW; x++ {
			i := (y*srcW + x) * 4
			srcImg.SetRGBA64(x, y, toRGBA64(pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]))
		}
	}

	dstImg := stdimage.NewRGBA64(stdimage.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Over, nil)

	out := make([]float32, dstW*dstH*4)
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			c := dstImg.RGBA64At(x, y)
			i := (y*dstW + x) * 4
			out[i] = float32(c.R) / 65535
			out[i+1] = float32(c.G) / 65535
			out[i+2] = float32(c.B) / 65535
			out[i+3] = float32(c.A) / 65535
		}
	}
	return out
}

func toRGBA64(r, g, b, a float32) color.RGBA64 {
	clamp := func(v float32) uint16 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint16(v * 65535)
	}
	return color.RGBA64{R: clamp(r), G: clamp(g), B: clamp(b), A: clamp(a)}
}
