package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/cmft"
	"github.com/Carmen-Shannon/cmft/layout"
)

func newSHCoeffsCmd() *cobra.Command {
	var inputLayout string

	cmd := &cobra.Command{
		Use:   "shcoeffs <input> [output.json]",
		Short: "Project a cubemap onto the 25-term real spherical-harmonic basis and print the coefficients",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			inKind, err := parseLayout(inputLayout)
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

			coeffs, err := cmft.ImageShCoeffs(srcImg)
			if err != nil {
				return err
			}

			out := os.Stdout
			if len(args) == 2 {
				f, err := os.Create(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(coeffs)
		},
	}

	cmd.Flags().StringVar(&inputLayout, "input-layout", "hcross", "input single-image layout")

	return cmd
}
