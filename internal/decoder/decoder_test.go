package decoder

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: 64, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
}

func TestDecodePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.png")
	writePNG(t, path, 12, 8)

	d := New()
	w, h, pixels, err := d.Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w != 12 || h != 8 {
		t.Fatalf("dims = %dx%d, want 12x8", w, h)
	}
	if len(pixels) != 12*8*4 {
		t.Fatalf("pixels len = %d, want %d", len(pixels), 12*8*4)
	}
}

func TestDecodeJPEG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.jpg")
	writeJPEG(t, path, 20, 10)

	d := New()
	w, h, pixels, err := d.Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w != 20 || h != 10 {
		t.Fatalf("dims = %dx%d, want 20x10", w, h)
	}
	if len(pixels) != 20*10*4 {
		t.Fatalf("pixels len = %d, want %d", len(pixels), 20*10*4)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	d := New()
	_, _, _, err := d.Decode(filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}

func TestSupportedExtensions(t *testing.T) {
	if !IsSupported("/a/b.PNG") {
		t.Error("expected .PNG to be supported (case-insensitive)")
	}
	if IsSupported("/a/b.gif") {
		t.Error("expected .gif to be unsupported (animated formats excluded)")
	}
	if len(SupportedExtensions()) == 0 {
		t.Error("expected at least one supported extension")
	}
}
