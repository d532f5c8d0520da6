// Package grayscale converts decoded images to 8-bit grayscale, with an
// optional aspect-preserving resize.
package grayscale

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// Options controls the conversion output.
type Options struct {
	// Width of the output in pixels; 0 keeps the source size. Height is
	// derived from the source aspect ratio.
	Width int
}

// Convert decodes an image (JPEG or PNG), converts it to 8-bit grayscale and
// applies the optional resize.
func Convert(r io.Reader, opts Options) (*image.Gray, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)

	if opts.Width > 0 && opts.Width != gray.Bounds().Dx() {
		gray = resize(gray, opts.Width)
	}

	return gray, nil
}

// EncodePNG writes the image as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// resize scales to the target width with Catmull-Rom resampling, keeping the
// aspect ratio.
func resize(src *image.Gray, width int) *image.Gray {
	w0 := src.Bounds().Dx()
	h0 := src.Bounds().Dy()
	height := int(float64(h0) * float64(width) / float64(w0))
	if height < 1 {
		height = 1
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
