package covers

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Covers are normalized to a bounded size and re-encoded as JPEG so the
// on-disk files stay small and uniform regardless of what the source
// catalog served.
const (
	maxCoverWidth  = 300
	maxCoverHeight = 450
	jpegQuality    = 85
)

// NormalizeImage decodes an image, flattens any alpha channel onto a
// white background, scales it down to fit within the cover bounds
// (preserving aspect ratio, never upscaling) and encodes it as JPEG.
func NormalizeImage(src io.Reader, dst io.Writer) error {
	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("empty image")
	}

	scaledW, scaledH := fitWithin(width, height, maxCoverWidth, maxCoverHeight)

	flattened := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.Draw(flattened, flattened.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(flattened, flattened.Bounds(), img, bounds, draw.Over, nil)

	return jpeg.Encode(dst, flattened, &jpeg.Options{Quality: jpegQuality})
}

// fitWithin scales (w, h) down to fit inside (maxW, maxH), preserving
// aspect ratio. Images already within bounds keep their size.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scaleW {
		scale = scaleH
	}

	scaledW := int(float64(w) * scale)
	scaledH := int(float64(h) * scale)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}
	return scaledW, scaledH
}
