// Package images holds the pixel work behind the canvas: decoding local files,
// fitting them to the display bound, and drawing prompts and masks.
package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrImageDecode is returned for unreadable or corrupt image files.
var ErrImageDecode = errors.New("image decode failed")

var fastPNG = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG encodes an image to PNG bytes for a Tk photo. Frames are rebuilt
// on every drag tick, so speed wins over size. Errors are ignored and may
// return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = fastPNG.Encode(&buf, img)
	return buf.Bytes()
}

// Load decodes the file at path, applying any EXIF orientation, and returns
// it as opaque NRGBA. Alpha is dropped and the color channels kept as stored.
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(ErrImageDecode, "%s: %v", path, err)
	}
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out, nil
}

// ScaleToFit shrinks src with a Lanczos filter so it fits within maxW x maxH,
// preserving aspect ratio. Images that already fit are copied unchanged;
// nothing is ever enlarged. Non-positive bounds disable the limit.
func ScaleToFit(src image.Image, maxW, maxH int) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return imaging.Clone(src)
	}
	return imaging.Fit(src, maxW, maxH, imaging.Lanczos)
}
