package cmft

import (
	"testing"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/filter"
	"github.com/Carmen-Shannon/cmft/image"
)

func constantSource(n int, value float32) *image.Image {
	img, _ := image.NewImage(n, 1)
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := img.Face(0, f)
		for i := range face.Pixels {
			face.Pixels[i] = value
		}
	}
	return img
}

func TestImageRadianceFilterRejectsEmptySource(t *testing.T) {
	_, err := ImageRadianceFilter(nil, RadianceOptions{DstFaceSize: 4})
	if err == nil {
		t.Fatal("expected error for nil source")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestImageRadianceFilterRejectsZeroDstFaceSize(t *testing.T) {
	src := constantSource(8, 1)
	_, err := ImageRadianceFilter(src, RadianceOptions{DstFaceSize: 0})
	if err == nil {
		t.Fatal("expected error for zero DstFaceSize")
	}
}

func TestImageRadianceFilterOnConstantEnvironment(t *testing.T) {
	src := constantSource(8, 2)
	dst, err := ImageRadianceFilter(src, RadianceOptions{
		DstFaceSize:   8,
		MipCount:      3,
		LightingModel: filter.Phong,
		GlossScale:    8,
		GlossBias:     0,
		NumCPUThreads: 2,
	})
	if err != nil {
		t.Fatalf("ImageRadianceFilter failed: %v", err)
	}
	if dst.MipCount() != 3 {
		t.Fatalf("MipCount = %d, want 3", dst.MipCount())
	}

	for m := 0; m < dst.MipCount(); m++ {
		for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
			face := dst.Face(m, f)
			c := face.At(face.Width/2, face.Height/2)
			if relErr(c[0], 2) > 0.05 {
				t.Errorf("mip %d face %v: expected filtered constant environment to remain ~2, got %v", m, f, c[0])
			}
		}
	}
}

func TestImageShCoeffsRejectsEmptySource(t *testing.T) {
	_, err := ImageShCoeffs(nil)
	if err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestImageIrradianceFilterShOnConstantEnvironment(t *testing.T) {
	src := constantSource(8, 3)
	dst, err := ImageIrradianceFilterSh(src, 4)
	if err != nil {
		t.Fatalf("ImageIrradianceFilterSh failed: %v", err)
	}
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		c := dst.Face(0, f).At(2, 2)
		if c[0] <= 0 {
			t.Errorf("face %v: expected positive irradiance, got %v", f, c[0])
		}
	}
}

func relErr(a, b float32) float32 {
	d := (a - b) / b
	if d < 0 {
		d = -d
	}
	return d
}
