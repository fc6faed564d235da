// Package imagefactory is the reference image-factory collaborator: it
// constructs demoimage.Image values from decoded or resized RGBA8 pixels,
// satisfying imageloader.Factory[*demoimage.Image].
package imagefactory

import "github.com/KreesoAuriga/ImageLoader/internal/demoimage"

// Factory constructs demoimage.Image values.
type Factory struct{}

// New returns a Factory.
func New() Factory { return Factory{} }

// Construct takes ownership of pixels and builds the client image type.
func (Factory) Construct(width, height int, path string, pixels []byte) (*demoimage.Image, error) {
	return demoimage.New(width, height, path, pixels)
}
