package main

import (
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/image"
	"github.com/Carmen-Shannon/cmft/layout"
	"github.com/Carmen-Shannon/cmft/mipgen"
)

func newConvertCmd() *cobra.Command {
	var (
		inputLayout  string
		outputLayout string
		size         int
	)

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a cubemap between layouts and container formats without filtering",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			inKind, err := parseLayout(inputLayout)
			if err != nil {
				return err
			}
			outKind, err := parseLayout(outputLayout)
			if err != nil {
				return err
			}

			srcPlane, err := loadPlane(args[0])
			if err != nil {
				return err
			}

			if inKind == outKind && size <= 0 {
				return savePlane(args[1], srcPlane)
			}

			srcFaceSize := inferFaceSize(srcPlane, inKind)
			img, err := layout.ToCubemap(srcPlane, inKind, srcFaceSize)
			if err != nil {
				return err
			}
			if size > 0 && size != srcFaceSize {
				img, err = resizeCubemapBase(img, size)
				if err != nil {
					return err
				}
			}

			dstPlane, err := layout.FromCubemap(img, outKind)
			if err != nil {
				return err
			}
			return savePlane(args[1], dstPlane)
		},
	}

	cmd.Flags().StringVar(&inputLayout, "input-layout", "hcross", "input single-image layout")
	cmd.Flags().StringVar(&outputLayout, "output-layout", "hcross", "output single-image layout")
	cmd.Flags().IntVar(&size, "size", 0, "resize the cubemap's base face size before writing (0 keeps the source size)")

	return cmd
}

// resizeCubemapBase rebuilds img's base level at a new face size, resampling
// each face independently with mipgen's general-purpose resizer since a
// layout-driven resize is rarely a clean power-of-two halving.
func resizeCubemapBase(img *image.Image, size int) (*image.Image, error) {
	out, err := image.NewImage(size, 1)
	if err != nil {
		return nil, err
	}
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		src := img.Face(0, f)
		resized := mipgen.ResizeRGBA(src.Pixels, src.Width, src.Height, size, size)
		dst := out.Face(0, f)
		copy(dst.Pixels, resized)
	}
	return out, nil
}
