// Package demoimage provides the concrete client image type used by the
// cmd/imgcache CLI and its reference decoder/factory. It is deliberately
// trivial: field access and nothing else, matching how the reference image
// value types in this codebase's teacher repo carry no behavior beyond
// their own data.
package demoimage

import "fmt"

// Image is an opaque, factory-constructed image at a specific size. It
// implements imagecache.Sized.
type Image struct {
	path          string
	width, height int32
	pixels        []byte
}

// New constructs an Image, taking ownership of pixels.
func New(width, height int, path string, pixels []byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("demoimage: dimensions must be positive, got %dx%d", width, height)
	}
	want := width * height * 4
	if len(pixels) != want {
		return nil, fmt.Errorf("demoimage: pixel buffer has %d bytes, want %d for %dx%d RGBA8", len(pixels), want, width, height)
	}
	return &Image{path: path, width: int32(width), height: int32(height), pixels: pixels}, nil
}

func (i *Image) Width() int32        { return i.width }
func (i *Image) Height() int32       { return i.height }
func (i *Image) Path() string        { return i.path }
func (i *Image) SizeInBytes() uint32 { return uint32(i.width) * uint32(i.height) * 4 }

// Pixels returns the owned RGBA8 buffer.
func (i *Image) Pixels() []byte { return i.pixels }
