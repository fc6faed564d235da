// Package decoder is the reference pixel-decoder collaborator: reads a file
// path, returns width, height and RGBA8 bytes, or a not-found-flavored error
// if the file is absent. Supported formats mirror the original stb_image
// configuration this was modeled on (PNG, BMP, JPEG enabled; TIFF is
// registered as well, which that configuration did not include; animated GIF
// and the other exotic formats stb_image supports are deliberately not
// registered — this project only supports non-animated images). TGA is not
// wired: nothing in this module's dependency surface (the teacher repo or
// the rest of the example pack) ships a Go TGA decoder, so it is left as a
// documented gap rather than hand-rolled.
package decoder

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Decoder decodes image files from disk into RGBA8 pixel buffers.
type Decoder struct{}

// New returns a Decoder.
func New() *Decoder { return &Decoder{} }

// Decode reads path and returns its dimensions and tightly-packed RGBA8
// pixels. When the file is absent it returns os.Open's *os.PathError as is,
// so both os.IsNotExist and errors.Is(err, os.ErrNotExist) report true.
func (d *Decoder) Decode(path string) (width, height int, pixels []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels = toRGBA(img)
	return width, height, pixels, nil
}

// toRGBA converts any image.Image into a tightly-packed, row-major RGBA8
// buffer regardless of the decoder's native color model or the source
// bounds' origin.
func toRGBA(img image.Image) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]byte, w*h*4)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out[i+0] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(b >> 8)
			out[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out
}

// supportedExtensions lists the file extensions this build's decoder
// registry recognizes.
var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

// SupportedExtensions returns the file extensions this build can decode.
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// IsSupported reports whether path's extension is one this decoder handles.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
