package main

import (
	"fmt"

	"github.com/Carmen-Shannon/cmft/container"
	"github.com/Carmen-Shannon/cmft/internal/cmdutil"
	"github.com/Carmen-Shannon/cmft/layout"
)

var layoutNames = map[string]layout.Kind{
	"cross":        layout.HorizontalCross,
	"hcross":       layout.HorizontalCross,
	"vcross":       layout.VerticalCross,
	"hstrip":       layout.HorizontalStrip,
	"vstrip":       layout.VerticalStrip,
	"facelist":     layout.FaceList,
	"latlong":      layout.LatLong,
	"octant":       layout.Octant,
}

func parseLayout(name string) (layout.Kind, error) {
	k, ok := layoutNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown layout %q (want one of cross, hcross, vcross, hstrip, vstrip, facelist, latlong, octant)", name)
	}
	return k, nil
}

func loadPlane(path string) (*layout.Plane, error) {
	f, format, err := cmdutil.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return container.Decode(f, format)
}

func savePlane(path string, p *layout.Plane) error {
	f, format, err := cmdutil.CreateOutput(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return container.Encode(f, p, format)
}
