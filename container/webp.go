package container

import (
	"image"
	"image/color"
	"io"

	"github.com/HugoSmits86/nativewebp"

	"github.com/Carmen-Shannon/cmft/layout"
	"github.com/Carmen-Shannon/cmft/pixelfmt"
)

func decodeWebP(r io.Reader) (*layout.Plane, error) {
	img, err := nativewebp.Decode(r)
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: decode webp", Err: err}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	p := &layout.Plane{Width: w, Height: h, Pixels: make([]float32, w*h*4)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := color.RGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
			c := pixelfmt.DecodeSRGB([4]byte{px.R, px.G, px.B, px.A})
			i := (y*w + x) * 4
			p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2], p.Pixels[i+3] = c[0], c[1], c[2], c[3]
		}
	}
	return p, nil
}

func encodeWebP(w io.Writer, p *layout.Plane) error {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := (y*p.Width + x) * 4
			c := [4]float32{p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2], p.Pixels[i+3]}
			px := pixelfmt.EncodeSRGB(c)
			img.SetNRGBA(x, y, color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
		}
	}
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: encode webp", Err: err}
	}
	return nil
}
