package container

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/Carmen-Shannon/cmft/layout"
	"github.com/Carmen-Shannon/cmft/pixelfmt"
)

// decodeStdImage decodes an 8-bit sRGB PNG or JPEG into a linear RGBA32F
// plane, grounded on common/types.go's use of the stdlib image/png and
// image/jpeg codecs for texture staging in the teacher repository.
func decodeStdImage(r io.Reader, format Format) (*layout.Plane, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case PNG:
		img, err = png.Decode(r)
	case JPEG:
		img, err = jpeg.Decode(r)
	}
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: decode image", Err: err}
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

func encodeStdImage(w io.Writer, p *layout.Plane, format Format) error {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := (y*p.Width + x) * 4
			c := [4]float32{p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2], p.Pixels[i+3]}
			px := pixelfmt.EncodeSRGB(c)
			img.SetRGBA(x, y, color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
		}
	}

	var err error
	switch format {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return &Error{Kind: ErrIO, Msg: "container: encode image", Err: err}
	}
	return nil
}
