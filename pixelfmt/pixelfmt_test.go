package pixelfmt

import "testing"

func TestRGBERoundTrip(t *testing.T) {
	cases := [][3]float32{
		{1, 1, 1},
		{0.001, 0.5, 2.3},
		{10, 0.1, 0.1},
	}
	for _, c := range cases {
		px := EncodeRGBE(c[0], c[1], c[2])
		r, g, b := DecodeRGBE(px)
		if relErr(r, c[0]) > 0.02 || relErr(g, c[1]) > 0.02 || relErr(b, c[2]) > 0.02 {
			t.Errorf("RGBE round trip %v -> %v,%v,%v exceeds tolerance", c, r, g, b)
		}
	}
}

func TestRGBEZeroIsZero(t *testing.T) {
	px := EncodeRGBE(0, 0, 0)
	r, g, b := DecodeRGBE(px)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("expected all-zero decode, got %v %v %v", r, g, b)
	}
}

func TestHalfRoundTrip(t *testing.T) {
	in := [4]float32{1.5, 0.25, 100.0, 1.0}
	bits := EncodeHalf(in)
	out := DecodeHalf(bits)
	for i := range in {
		if relErr(out[i], in[i]) > 0.01 {
			t.Errorf("half round trip channel %d: %v -> %v", i, in[i], out[i])
		}
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	in := [4]float32{0.5, 0.2, 0.8, 1.0}
	px := EncodeSRGB(in)
	out := DecodeSRGB(px)
	for i := range in {
		if absErr(out[i], in[i]) > 0.02 {
			t.Errorf("sRGB round trip channel %d: %v -> %v", i, in[i], out[i])
		}
	}
}

func TestRGBMRoundTripWithinRange(t *testing.T) {
	px := EncodeRGBM(1, 2, 3)
	r, g, b := DecodeRGBM(px)
	if relErr(r, 1) > 0.05 || relErr(g, 2) > 0.05 || relErr(b, 3) > 0.05 {
		t.Errorf("RGBM round trip: got %v %v %v", r, g, b)
	}
}

func relErr(a, b float32) float32 {
	if b == 0 {
		return absErr(a, b)
	}
	d := (a - b) / b
	if d < 0 {
		d = -d
	}
	return d
}

func absErr(a, b float32) float32 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d
}
