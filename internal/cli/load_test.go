package cli

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeFixturePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 10, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

// resetLoadFlags restores the load command's package-level flag variables to
// their defaults between tests, since cobra flag vars are shared globals.
func resetLoadFlags() {
	loadWidth = 0
	loadHeight = 0
	loadWorkers = 0
	loadMemoryMiB = 256
	loadRepeat = 1
}

func TestRunLoadDecodesEveryFile(t *testing.T) {
	resetLoadFlags()
	defer resetLoadFlags()

	dir := t.TempDir()
	writeFixturePNG(t, filepath.Join(dir, "one.png"), 4, 4)
	writeFixturePNG(t, filepath.Join(dir, "two.png"), 6, 2)

	if err := runLoad(nil, []string{dir}); err != nil {
		t.Fatalf("runLoad: %v", err)
	}
}

func TestRunLoadRejectsEmptyDir(t *testing.T) {
	resetLoadFlags()
	defer resetLoadFlags()

	dir := t.TempDir()
	if err := runLoad(nil, []string{dir}); err == nil {
		t.Fatal("expected an error for a directory with no supported images")
	}
}

func TestRunLoadRepeatResubmitsFileSet(t *testing.T) {
	resetLoadFlags()
	defer resetLoadFlags()

	dir := t.TempDir()
	writeFixturePNG(t, filepath.Join(dir, "one.png"), 3, 3)

	loadRepeat = 3
	if err := runLoad(nil, []string{dir}); err != nil {
		t.Fatalf("runLoad: %v", err)
	}
}

func TestContentKeyIsStableAndShort(t *testing.T) {
	a := contentKey("/tmp/foo.png")
	b := contentKey("/tmp/foo.png")
	if a != b {
		t.Fatalf("contentKey not stable: %q != %q", a, b)
	}
	if len(a) != 10 {
		t.Fatalf("contentKey length = %d, want 10", len(a))
	}
	if contentKey("/tmp/bar.png") == a {
		t.Fatal("expected different paths to produce different keys")
	}
}
