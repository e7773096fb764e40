package filter

import (
	"testing"

	"github.com/Carmen-Shannon/cmft/cubemap"
)

func TestDetermineFilterAreaHitFaceOnly(t *testing.T) {
	fp := DetermineFilterArea(cubemap.PosZ, 0.5, 0.5, 0.1)

	if fp.Areas[cubemap.PosZ].IsEmpty() {
		t.Fatal("hit face area must not be empty")
	}
	for f := cubemap.Face(0); f < cubemap.NumFaces; f++ {
		if f == cubemap.PosZ {
			continue
		}
		if !fp.Areas[f].IsEmpty() {
			t.Fatalf("face %v should have no bleed for a small centered filter, got %+v", f, fp.Areas[f])
		}
	}
}

func TestDetermineFilterAreaBleedsAcrossEdge(t *testing.T) {
	// A filter near the right edge of +Z should bleed onto +X.
	fp := DetermineFilterArea(cubemap.PosZ, 0.95, 0, 0.2)

	if fp.Areas[cubemap.PosX].IsEmpty() {
		t.Fatal("expected bleed onto +X for a filter near +Z's right edge")
	}
}

func TestAABBClampCollapsesOutOfRange(t *testing.T) {
	b := AABB{MinU: 1.5, MinV: 1.5, MaxU: 2.0, MaxV: 2.0}.Clamp()
	if !b.IsEmpty() {
		t.Fatalf("expected clamp to collapse an out-of-range box, got %+v", b)
	}
}

func TestApplyLightingModel(t *testing.T) {
	cases := []struct {
		model LightingModel
		in    float32
		want  float32
	}{
		{Phong, 8, 8},
		{PhongBRDF, 8, 9},
		{Blinn, 8, 2},
		{BlinnBRDF, 8, 3},
	}
	for _, c := range cases {
		if got := ApplyLightingModel(c.in, c.model); got != c.want {
			t.Errorf("ApplyLightingModel(%v, %v) = %v, want %v", c.in, c.model, got, c.want)
		}
	}
}

func TestSpecularPowerForMipDecreasesWithMip(t *testing.T) {
	mipCount := 8
	prev := SpecularPowerForMip(0, mipCount, 10, 1)
	for mip := 1; mip < mipCount; mip++ {
		p := SpecularPowerForMip(mip, mipCount, 10, 1)
		if p > prev {
			t.Fatalf("specular power should not increase with mip: mip %d got %v > prev %v", mip, p, prev)
		}
		prev = p
	}
}

func TestComputeMipParamsFilterSizeAtLeastOneTexel(t *testing.T) {
	p := ComputeMipParams(0, 8, 256, Phong, 10, 1)
	if p.FilterSize < 1.0/256 {
		t.Fatalf("filter size %v should be at least one texel wide", p.FilterSize)
	}
}
