package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/cmft"
	"github.com/Carmen-Shannon/cmft/gpu/wgpubackend"
	"github.com/Carmen-Shannon/cmft/internal/config"
	"github.com/Carmen-Shannon/cmft/layout"
	"github.com/Carmen-Shannon/cmft/scheduler"
)

func newRadianceCmd() *cobra.Command {
	var (
		inputLayout  string
		outputLayout string
		configPath   string
		flags        config.Flags
	)

	cmd := &cobra.Command{
		Use:   "radiance <input> <output>",
		Short: "Prefilter a cubemap's specular radiance into a glossiness mip chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			cfg := config.Config{}
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.Resolve(flags)

			lightingModel, err := config.ParseLightingModel(cfg.LightingModel)
			if err != nil {
				return err
			}
			edgeFixup, err := config.ParseEdgeFixup(cfg.EdgeFixup)
			if err != nil {
				return err
			}

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

			var gpuBackend *wgpubackend.Backend
			if cfg.UseGPU {
				b, err := wgpubackend.New()
				if err != nil {
					log.Printf("radiance: gpu unavailable, continuing on cpu only: %v", err)
				} else {
					gpuBackend = b
					defer b.Release()
				}
			}

			opts := cmft.RadianceOptions{
				DstFaceSize:   cfg.DstFaceSize,
				MipCount:      cfg.MipCount,
				ExcludeBase:   cfg.ExcludeBase,
				LightingModel: lightingModel,
				GlossScale:    cfg.GlossScale,
				GlossBias:     cfg.GlossBias,
				EdgeFixup:     edgeFixup,
				NumCPUThreads: cfg.Workers,
				Progress:      scheduler.NewProgress(cfg.MipCount*6, 0),
			}
			if gpuBackend != nil {
				opts.GPU = gpuBackend
			}

			dst, err := cmft.ImageRadianceFilter(srcImg, opts)
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
	cmd.Flags().StringVar(&outputLayout, "output-layout", "hcross", "output single-image layout (mip 0 only)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a JSON config file")
	cmd.Flags().IntVar(&flags.DstFaceSize, "size", 0, "destination base face size")
	cmd.Flags().IntVar(&flags.MipCount, "mips", 0, "number of mip levels")
	cmd.Flags().BoolVar(&flags.ExcludeBase, "exclude-base", false, "copy mip 0 unfiltered instead of convolving it")
	cmd.Flags().StringVar(&flags.LightingModel, "lighting-model", "", "phong, phongbrdf, blinn, or blinnbrdf")
	cmd.Flags().Float32Var(&flags.GlossScale, "gloss-scale", 0, "specular power scale")
	cmd.Flags().Float32Var(&flags.GlossBias, "gloss-bias", 0, "specular power bias")
	cmd.Flags().StringVar(&flags.EdgeFixup, "edge-fixup", "", "none or warp")
	cmd.Flags().IntVar(&flags.Workers, "workers", 0, "number of CPU worker threads")
	cmd.Flags().BoolVar(&flags.UseGPU, "gpu", false, "accelerate filtering with a WebGPU compute backend")

	return cmd
}

// inferFaceSize derives the cubemap face size implied by a decoded plane and
// the layout it was read as.
func inferFaceSize(p *layout.Plane, kind layout.Kind) int {
	switch kind {
	case layout.HorizontalCross:
		return p.Width / 4
	case layout.VerticalCross:
		return p.Width / 3
	case layout.HorizontalStrip:
		return p.Width / 6
	case layout.VerticalStrip, layout.FaceList:
		return p.Height / 6
	case layout.LatLong:
		return p.Height
	case layout.Octant:
		return p.Width
	default:
		return p.Width
	}
}
