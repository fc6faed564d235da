package imageloader

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/KreesoAuriga/ImageLoader/internal/imagecache"
)

// resizePixels produces a new, independently-owned RGBA8 buffer of
// width*height*4 bytes from source. It never reads past source's buffer:
// the input view's bounds are exactly source's own dimensions, and
// imaging.Resize only ever samples within the bounds of the image it is
// given. No visually-correct resampling is required; Lanczos is used simply
// because it's what the reference pipeline this is modeled on already uses
// for its own (real) resize step.
func resizePixels(source *imagecache.SourceImage, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %dx%d", width, height)
	}

	src := &image.RGBA{
		Pix:    source.Pixels,
		Stride: source.Width * 4,
		Rect:   image.Rect(0, 0, source.Width, source.Height),
	}

	resized := imaging.Resize(src, width, height, imaging.Lanczos)

	out := make([]byte, width*height*4)
	rowBytes := width * 4
	if resized.Stride == rowBytes {
		copy(out, resized.Pix)
		return out, nil
	}
	for y := 0; y < height; y++ {
		srcRow := resized.Pix[y*resized.Stride : y*resized.Stride+rowBytes]
		copy(out[y*rowBytes:(y+1)*rowBytes], srcRow)
	}
	return out, nil
}
