package layout

import (
	"testing"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/image"
)

func makeTestCubemap(n int) *image.Image {
	img, _ := image.NewImage(n, 1)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := img.Face(0, f)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				face.Set(x, y, [4]float32{float32(f) + 1, float32(x), float32(y), 1})
			}
		}
	}
	return img
}

func TestHorizontalStripRoundTrip(t *testing.T) {
	n := 4
	img := makeTestCubemap(n)

	plane, err := FromCubemap(img, HorizontalStrip)
	if err != nil {
		t.Fatalf("FromCubemap: %v", err)
	}
	if plane.Width != n*cubemap.NumFaces || plane.Height != n {
		t.Fatalf("unexpected plane size %dx%d", plane.Width, plane.Height)
	}

	out, err := ToCubemap(plane, HorizontalStrip, n)
	if err != nil {
		t.Fatalf("ToCubemap: %v", err)
	}

	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		want := img.Face(0, f)
		got := out.Face(0, f)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				if want.At(x, y) != got.At(x, y) {
					t.Fatalf("face %v texel (%d,%d): want %v got %v", f, x, y, want.At(x, y), got.At(x, y))
				}
			}
		}
	}
}

func TestHorizontalCrossRoundTrip(t *testing.T) {
	n := 4
	img := makeTestCubemap(n)

	plane, err := FromCubemap(img, HorizontalCross)
	if err != nil {
		t.Fatalf("FromCubemap: %v", err)
	}
	if plane.Width != n*4 || plane.Height != n*3 {
		t.Fatalf("unexpected cross size %dx%d", plane.Width, plane.Height)
	}

	out, err := ToCubemap(plane, HorizontalCross, n)
	if err != nil {
		t.Fatalf("ToCubemap: %v", err)
	}

	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		want := img.Face(0, f)
		got := out.Face(0, f)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				if want.At(x, y) != got.At(x, y) {
					t.Fatalf("face %v texel (%d,%d): want %v got %v", f, x, y, want.At(x, y), got.At(x, y))
				}
			}
		}
	}
}

func TestLatLongProducesExpectedDimensions(t *testing.T) {
	n := 8
	img := makeTestCubemap(n)
	plane, err := FromCubemap(img, LatLong)
	if err != nil {
		t.Fatalf("FromCubemap: %v", err)
	}
	if plane.Width != n*2 || plane.Height != n {
		t.Fatalf("latlong plane size = %dx%d, want %dx%d", plane.Width, plane.Height, n*2, n)
	}
}
