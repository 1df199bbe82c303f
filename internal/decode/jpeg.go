// Package decode turns compressed images into the canonical pixel buffer
// that content fingerprints are computed over.
//
// The canonical layout is 8-bit RGB, three bytes per pixel, rows top to
// bottom with no padding and no alpha channel. Grayscale and CMYK sources are
// converted to RGB first, so the buffer is always width × height × 3 bytes.
package decode

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"

	"golang.org/x/image/draw"

	"ciid-go/internal/ciid"
)

// JPEG decodes JPEG files.
type JPEG struct{}

// DecodePixels decodes the file at path into the canonical RGB buffer.
func (JPEG) DecodePixels(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return decodeJPEG(f)
}

func decodeJPEG(r io.Reader) ([]byte, error) {
	img, err := jpeg.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("decoding jpeg: %w", err)
	}
	return CanonicalRGB(img), nil
}

// CanonicalRGB converts img to the canonical packed RGB layout.
func CanonicalRGB(img image.Image) []byte {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	// Copy converts YCbCr, Gray and CMYK sources in one pass at 1:1 scale.
	draw.Copy(rgba, image.Point{}, img, b, draw.Src, nil)

	// NewRGBA has Stride == 4*width, so Pix is contiguous.
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for i := 0; i+3 < len(rgba.Pix); i += 4 {
		out = append(out, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
	}
	return out
}

var _ ciid.ImageDecoder = JPEG{}
