// Package container reads and writes the file formats cmft accepts as
// cubemap input and output: PNG and JPEG (stdlib codecs, 8-bit sRGB), TGA
// (github.com/ftrvxmtrx/tga), WebP (github.com/HugoSmits86/nativewebp),
// Radiance HDR (hand-rolled RGBE), and DDS/KTX (hand-rolled headers around a
// raw RGBA32F payload). Every reader returns a layout.Plane in
// linear RGBA32F; every writer takes one (spec.md §6).
package container

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/cmft/layout"
)

// Format names a container file format.
type Format int

const (
	PNG Format = iota
	JPEG
	TGA
	WebP
	HDR
	DDS
	KTX
)

// ErrKind identifies a category of container failure, mapped into
// cmft.Error's Kind taxonomy by the facade package.
type ErrKind int

const (
	ErrUnsupportedFormat ErrKind = iota
	ErrMalformed
	ErrIO
)

// Error is returned by Decode and the format-specific encoders.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// FormatFromExtension guesses a container format from a file name's
// extension, defaulting to an error for anything unrecognized.
func FormatFromExtension(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".tga":
		return TGA, nil
	case ".webp":
		return WebP, nil
	case ".hdr":
		return HDR, nil
	case ".dds":
		return DDS, nil
	case ".ktx":
		return KTX, nil
	default:
		return 0, &Error{Kind: ErrUnsupportedFormat, Msg: fmt.Sprintf("container: unrecognized file extension %q", filepath.Ext(name))}
	}
}

// Decode reads a single-image container of the given format into a linear
// RGBA32F layout.Plane.
func Decode(r io.Reader, format Format) (*layout.Plane, error) {
	switch format {
	case PNG, JPEG:
		return decodeStdImage(r, format)
	case TGA:
		return decodeTGA(r)
	case WebP:
		return decodeWebP(r)
	case HDR:
		return decodeHDR(r)
	case DDS:
		return decodeDDS(r)
	case KTX:
		return decodeKTX(r)
	default:
		return nil, &Error{Kind: ErrUnsupportedFormat, Msg: fmt.Sprintf("container: unsupported decode format %d", format)}
	}
}

// Encode writes plane to w in the given format.
func Encode(w io.Writer, p *layout.Plane, format Format) error {
	switch format {
	case PNG, JPEG:
		return encodeStdImage(w, p, format)
	case TGA:
		return encodeTGA(w, p)
	case WebP:
		return encodeWebP(w, p)
	case HDR:
		return encodeHDR(w, p)
	case DDS:
		return encodeDDS(w, p)
	case KTX:
		return encodeKTX(w, p)
	default:
		return &Error{Kind: ErrUnsupportedFormat, Msg: fmt.Sprintf("container: unsupported encode format %d", format)}
	}
}
