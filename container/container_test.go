package container

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/cmft/layout"
)

func testPlane() *layout.Plane {
	p := &layout.Plane{Width: 3, Height: 2, Pixels: make([]float32, 3*2*4)}
	for i := range p.Pixels {
		p.Pixels[i] = float32(i) * 0.01
	}
	// alpha channels at 1
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			p.Pixels[(y*3+x)*4+3] = 1
		}
	}
	return p
}

func TestHDRRoundTrip(t *testing.T) {
	p := testPlane()

	var buf bytes.Buffer
	if err := encodeHDR(&buf, p); err != nil {
		t.Fatalf("encodeHDR: %v", err)
	}

	out, err := decodeHDR(&buf)
	if err != nil {
		t.Fatalf("decodeHDR: %v", err)
	}
	if out.Width != p.Width || out.Height != p.Height {
		t.Fatalf("dimension mismatch: got %dx%d want %dx%d", out.Width, out.Height, p.Width, p.Height)
	}
	for i := 0; i < len(p.Pixels); i += 4 {
		for c := 0; c < 3; c++ {
			want := p.Pixels[i+c]
			got := out.Pixels[i+c]
			if want == 0 {
				if got != 0 {
					t.Errorf("pixel %d channel %d: want 0 got %v", i, c, got)
				}
				continue
			}
			rel := (got - want) / want
			if rel < 0 {
				rel = -rel
			}
			if rel > 0.02 {
				t.Errorf("pixel %d channel %d: want %v got %v", i, c, want, got)
			}
		}
	}
}

func TestDDSRoundTrip(t *testing.T) {
	p := testPlane()

	var buf bytes.Buffer
	if err := encodeDDS(&buf, p); err != nil {
		t.Fatalf("encodeDDS: %v", err)
	}
	out, err := decodeDDS(&buf)
	if err != nil {
		t.Fatalf("decodeDDS: %v", err)
	}
	if out.Width != p.Width || out.Height != p.Height {
		t.Fatalf("dimension mismatch: got %dx%d want %dx%d", out.Width, out.Height, p.Width, p.Height)
	}
	for i := range p.Pixels {
		if out.Pixels[i] != p.Pixels[i] {
			t.Fatalf("pixel %d: want %v got %v (dds is lossless)", i, p.Pixels[i], out.Pixels[i])
		}
	}
}

func TestKTXRoundTrip(t *testing.T) {
	p := testPlane()

	var buf bytes.Buffer
	if err := encodeKTX(&buf, p); err != nil {
		t.Fatalf("encodeKTX: %v", err)
	}
	out, err := decodeKTX(&buf)
	if err != nil {
		t.Fatalf("decodeKTX: %v", err)
	}
	if out.Width != p.Width || out.Height != p.Height {
		t.Fatalf("dimension mismatch: got %dx%d want %dx%d", out.Width, out.Height, p.Width, p.Height)
	}
	for i := range p.Pixels {
		if out.Pixels[i] != p.Pixels[i] {
			t.Fatalf("pixel %d: want %v got %v (ktx is lossless)", i, p.Pixels[i], out.Pixels[i])
		}
	}
}

func TestTGARoundTrip(t *testing.T) {
	p := testPlane()

	var buf bytes.Buffer
	if err := encodeTGA(&buf, p); err != nil {
		t.Fatalf("encodeTGA: %v", err)
	}
	out, err := decodeTGA(&buf)
	if err != nil {
		t.Fatalf("decodeTGA: %v", err)
	}
	if out.Width != p.Width || out.Height != p.Height {
		t.Fatalf("dimension mismatch: got %dx%d want %dx%d", out.Width, out.Height, p.Width, p.Height)
	}
	assertClampedRoundTrip(t, p, out, 0.02)
}

func TestPNGRoundTrip(t *testing.T) {
	p := testPlane()

	var buf bytes.Buffer
	if err := encodeStdImage(&buf, p, PNG); err != nil {
		t.Fatalf("encodeStdImage: %v", err)
	}
	out, err := decodeStdImage(&buf, PNG)
	if err != nil {
		t.Fatalf("decodeStdImage: %v", err)
	}
	if out.Width != p.Width || out.Height != p.Height {
		t.Fatalf("dimension mismatch: got %dx%d want %dx%d", out.Width, out.Height, p.Width, p.Height)
	}
	assertClampedRoundTrip(t, p, out, 0.05)
}

// assertClampedRoundTrip compares an 8-bit-quantized round trip against the
// original plane, clamping the original to [0, 1] first since every 8-bit
// container format in this package is LDR-only.
func assertClampedRoundTrip(t *testing.T, want, got *layout.Plane, tol float32) {
	t.Helper()
	for i := range want.Pixels {
		w := want.Pixels[i]
		if w < 0 {
			w = 0
		}
		if w > 1 {
			w = 1
		}
		d := got.Pixels[i] - w
		if d < 0 {
			d = -d
		}
		if d > tol {
			t.Errorf("pixel component %d: want ~%v got %v", i, w, got.Pixels[i])
		}
	}
}

func TestFormatFromExtension(t *testing.T) {
	cases := map[string]Format{
		"a.png": PNG, "a.PNG": PNG,
		"a.jpg": JPEG, "a.jpeg": JPEG,
		"a.tga": TGA, "a.webp": WebP,
		"a.hdr": HDR, "a.dds": DDS, "a.ktx": KTX,
	}
	for name, want := range cases {
		got, err := FormatFromExtension(name)
		if err != nil {
			t.Fatalf("FormatFromExtension(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("FormatFromExtension(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := FormatFromExtension("a.xyz"); err == nil {
		t.Fatal("expected error for unrecognized extension")
	}
}
