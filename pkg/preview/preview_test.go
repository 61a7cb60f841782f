package preview

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-cropper/pkg/types"
)

func createTestImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 200, 200, 255})
		}
	}
	return img
}

func TestOverlay(t *testing.T) {
	renderer := New()
	img := createTestImage(100, 50)
	box := types.CropBox{Left: 25, Top: 0, Right: 75, Bottom: 50}

	out := renderer.Overlay(img, box)

	if out.Bounds() != img.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", img.Bounds(), out.Bounds())
	}

	// Outside the box is shaded
	if got := out.NRGBAAt(5, 25); got.R != 100 {
		t.Errorf("Expected shaded pixel, got %v", got)
	}

	// Border is stroked
	if got := out.NRGBAAt(25, 10); got != renderer.config.Stroke {
		t.Errorf("Expected stroke color at left edge, got %v", got)
	}

	// Interior keeps its color
	if got := out.NRGBAAt(40, 10); got != (color.NRGBA{200, 200, 200, 255}) {
		t.Errorf("Expected untouched interior, got %v", got)
	}

	// Center is marked
	if got := out.NRGBAAt(50, 25); got != renderer.config.Center {
		t.Errorf("Expected center mark, got %v", got)
	}

	// Source is not modified
	if got := img.(*image.NRGBA).NRGBAAt(5, 25); got.R != 200 {
		t.Errorf("Source image was modified: %v", got)
	}
}

func TestOverlayEmptyBox(t *testing.T) {
	renderer := NewWithConfig(Config{ShadeAlpha: 1})
	img := createTestImage(10, 10)

	out := renderer.Overlay(img, types.CropBox{Left: 5, Top: 0, Right: 5, Bottom: 10})
	if got := out.NRGBAAt(5, 5); got.R != 0 || got.A != 255 {
		t.Errorf("Expected fully shaded pixel, got %v", got)
	}
}

func TestThumbnail(t *testing.T) {
	img := createTestImage(400, 200)

	thumb := Thumbnail(img, 100)
	if thumb.Bounds().Dx() != 100 || thumb.Bounds().Dy() != 50 {
		t.Errorf("Expected 100x50, got %v", thumb.Bounds())
	}

	if same := Thumbnail(img, 1000); same != img {
		t.Error("Expected small image to be returned unchanged")
	}
}

func TestScaleBox(t *testing.T) {
	box := types.CropBox{Left: 250, Top: 0, Right: 750, Bottom: 500}
	got := ScaleBox(box, types.ImageDimensions{Width: 1000, Height: 500}, types.ImageDimensions{Width: 100, Height: 50})
	want := types.CropBox{Left: 25, Top: 0, Right: 75, Bottom: 50}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	img := createTestImage(20, 10)

	for _, format := range []string{"png", "jpg", "webp"} {
		path := filepath.Join(dir, "out."+format)
		if err := Save(img, path, format, 90, false); err != nil {
			t.Fatalf("%s: Save failed: %v", format, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s: expected non-empty file, got %v", format, err)
		}
	}

	// Format decides the encoding, not the extension
	path := filepath.Join(dir, "mislabelled.jpg")
	if err := Save(img, path, "png", 0, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, format, err := image.DecodeConfig(f); err != nil || format != "png" {
		t.Errorf("Expected png, got %q (%v)", format, err)
	}

	if err := Save(img, filepath.Join(dir, "out.bmp"), "bmp", 90, false); err == nil {
		t.Error("Expected error for unsupported format")
	}

	// imaging must be able to read what it wrote
	if _, err := imaging.Open(filepath.Join(dir, "out.png")); err != nil {
		t.Errorf("Failed to reopen png: %v", err)
	}
}
