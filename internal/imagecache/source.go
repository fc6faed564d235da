package imagecache

import "fmt"

// SourceImage owns the decoded RGBA8 pixels of a file at its native
// resolution. It is exclusively owned by the cache entry it is admitted
// into; there is no shared/weak ownership on the source side, only on
// resized variants.
type SourceImage struct {
	Path   string
	Width  int
	Height int
	Pixels []byte
}

// NewSourceImage validates and constructs a source image. Width and height
// must be >= 1 and Pixels must hold exactly width*height*4 RGBA8 bytes.
func NewSourceImage(path string, width, height int, pixels []byte) (*SourceImage, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("imagecache: source image dimensions must be >= 1, got %dx%d", width, height)
	}
	want := width * height * 4
	if len(pixels) != want {
		return nil, fmt.Errorf("imagecache: source image pixel buffer has %d bytes, want %d for %dx%d RGBA8", len(pixels), want, width, height)
	}
	return &SourceImage{Path: path, Width: width, Height: height, Pixels: pixels}, nil
}

// SizeInBytes is the footprint charged against the cache budget.
func (s *SourceImage) SizeInBytes() int64 {
	return int64(s.Width) * int64(s.Height) * 4
}
