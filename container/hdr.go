package container

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/cmft/layout"
	"github.com/Carmen-Shannon/cmft/pixelfmt"
)

// Radiance HDR (.hdr/.pic) has no maintained Go codec among the retrieved
// examples' dependencies, so it is implemented directly against the format
// the original implementation writes: a short ASCII header, a
// "-Y H +X W" resolution line, then H scanlines of flat (uncompressed) RGBE
// quads. RLE scanlines are accepted on read for compatibility with
// externally produced files but never written.
func decodeHDR(r io.Reader) (*layout.Plane, error) {
	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "#?") {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: hdr: missing #? signature"}
	}

	for {
		line, err = br.ReadString('\n')
		if err != nil {
			return nil, &Error{Kind: ErrMalformed, Msg: "container: hdr: truncated header", Err: err}
		}
		if strings.TrimSpace(line) == "" {
			break
		}
	}

	resLine, err := br.ReadString('\n')
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, Msg: "container: hdr: missing resolution line", Err: err}
	}
	w, h, err := parseHDRResolution(resLine)
	if err != nil {
		return nil, err
	}

	p := &layout.Plane{Width: w, Height: h, Pixels: make([]float32, w*h*4)}

	row := make([]byte, w*4)
	for y := 0; y < h; y++ {
		if _, err := io.ReadFull(br, row[:4]); err != nil {
			return nil, &Error{Kind: ErrMalformed, Msg: "container: hdr: truncated scanline data", Err: err}
		}
		if w >= 8 && w <= 0x7fff && row[0] == 2 && row[1] == 2 && int(row[2])<<8|int(row[3]) == w {
			if err := decodeHDRRLEScanline(br, p, y, w); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := io.ReadFull(br, row[4:]); err != nil {
			return nil, &Error{Kind: ErrMalformed, Msg: "container: hdr: truncated scanline data", Err: err}
		}
		for x := 0; x < w; x++ {
			rr, g, b := pixelfmt.DecodeRGBE([4]byte{row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]})
			i := (y*w + x) * 4
			p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2], p.Pixels[i+3] = rr, g, b, 1
		}
	}
	return p, nil
}

func decodeHDRRLEScanline(br *bufio.Reader, p *layout.Plane, y, w int) error {
	channels := [4][]byte{make([]byte, w), make([]byte, w), make([]byte, w), make([]byte, w)}
	for c := 0; c < 4; c++ {
		x := 0
		for x < w {
			count, err := br.ReadByte()
			if err != nil {
				return &Error{Kind: ErrMalformed, Msg: "container: hdr: truncated rle channel", Err: err}
			}
			if count > 128 {
				value, err := br.ReadByte()
				if err != nil {
					return &Error{Kind: ErrMalformed, Msg: "container: hdr: truncated rle run", Err: err}
				}
				n := int(count) - 128
				for i := 0; i < n && x < w; i++ {
					channels[c][x] = value
					x++
				}
			} else {
				n := int(count)
				for i := 0; i < n && x < w; i++ {
					v, err := br.ReadByte()
					if err != nil {
						return &Error{Kind: ErrMalformed, Msg: "container: hdr: truncated rle literal", Err: err}
					}
					channels[c][x] = v
					x++
				}
			}
		}
	}
	for x := 0; x < w; x++ {
		rr, g, b := pixelfmt.DecodeRGBE([4]byte{channels[0][x], channels[1][x], channels[2][x], channels[3][x]})
		i := (y*w + x) * 4
		p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2], p.Pixels[i+3] = rr, g, b, 1
	}
	return nil
}

func parseHDRResolution(line string) (w, h int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "-Y" || fields[2] != "+X" {
		return 0, 0, &Error{Kind: ErrMalformed, Msg: fmt.Sprintf("container: hdr: unsupported resolution line %q", strings.TrimSpace(line))}
	}
	h, errH := strconv.Atoi(fields[1])
	w, errW := strconv.Atoi(fields[3])
	if errH != nil || errW != nil || w <= 0 || h <= 0 {
		return 0, 0, &Error{Kind: ErrMalformed, Msg: fmt.Sprintf("container: hdr: invalid resolution line %q", strings.TrimSpace(line))}
	}
	return w, h, nil
}

func encodeHDR(w io.Writer, p *layout.Plane) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "#?RADIANCE\n")
	fmt.Fprint(bw, "FORMAT=32-bit_rle_rgbe\n\n")
	fmt.Fprintf(bw, "-Y %d +X %d\n", p.Height, p.Width)

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := (y*p.Width + x) * 4
			px := pixelfmt.EncodeRGBE(p.Pixels[i], p.Pixels[i+1], p.Pixels[i+2])
			if _, err := bw.Write(px[:]); err != nil {
				return &Error{Kind: ErrIO, Msg: "container: hdr: write scanline", Err: err}
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return &Error{Kind: ErrIO, Msg: "container: hdr: flush", Err: err}
	}
	return nil
}
