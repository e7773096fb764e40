package mipgen

import (
	"testing"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/image"
)

func TestGenerateBoxChainAveragesConstantFace(t *testing.T) {
	img, err := image.NewImage(8, 4)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		face := img.Face(0, f)
		for i := 0; i < len(face.Pixels); i += 4 {
			face.Pixels[i], face.Pixels[i+1], face.Pixels[i+2], face.Pixels[i+3] = 1, 2, 3, 1
		}
	}

	GenerateBoxChain(img)

	for m := 1; m < img.MipCount(); m++ {
		face := img.Face(m, cubemap.PosX)
		c := face.At(0, 0)
		if c[0] != 1 || c[1] != 2 || c[2] != 3 {
			t.Fatalf("mip %d: expected constant color to survive averaging, got %v", m, c)
		}
	}
}

func TestResizeRGBAPreservesDimensions(t *testing.T) {
	src := make([]float32, 4*4*4)
	out := ResizeRGBA(src, 4, 4, 8, 2)
	if len(out) != 8*2*4 {
		t.Fatalf("resized buffer length = %d, want %d", len(out), 8*2*4)
	}
}
