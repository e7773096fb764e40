package main

import (
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/cmft"
	"github.com/Carmen-Shannon/cmft/layout"
)

func newIrradianceCmd() *cobra.Command {
	var (
		inputLayout  string
		outputLayout string
		dstSize      int
	)

	cmd := &cobra.Command{
		Use:   "irradiance <input> <output>",
		Short: "Project a cubemap onto order-5 spherical harmonics and reconstruct a diffuse irradiance map",
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
			srcFaceSize := inferFaceSize(srcPlane, inKind)
			srcImg, err := layout.ToCubemap(srcPlane, inKind, srcFaceSize)
			if err != nil {
				return err
			}

			dst, err := cmft.ImageIrradianceFilterSh(srcImg, dstSize)
			if err != nil {
				return err
			}

			dstPlane, err := layout.FromCubemap(dst, outKind)
			if err != nil {
				return err
			}
			return savePlane(args[1], dstPlane)
		},
	}

	cmd.Flags().StringVar(&inputLayout, "input-layout", "hcross", "input single-image layout")
	cmd.Flags().StringVar(&outputLayout, "output-layout", "hcross", "output single-image layout")
	cmd.Flags().IntVar(&dstSize, "size", 32, "destination face size")

	return cmd
}
