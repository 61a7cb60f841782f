package imagecropper

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/image-cropper/pkg/analyzer"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/preview"
	"github.com/menta2k/image-cropper/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{64, 128, 192, 255})
		}
	}

	return img
}

func writeJPEG(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, createTestImage(width, height), nil); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	ic := New()
	if ic == nil {
		t.Fatal("New() returned nil")
	}

	if ic.analyzer == nil {
		t.Error("analyzer component is nil")
	}

	if ic.cropper == nil {
		t.Error("cropper component is nil")
	}

	if ic.preview == nil {
		t.Error("preview component is nil")
	}
}

func TestNewWithConfig(t *testing.T) {
	ic := NewWithConfig(
		analyzer.Config{SupportedFormats: []string{"png"}},
		cropper.CropConfig{Rounding: cropper.RoundReal},
		preview.DefaultConfig(),
	)

	if ic.Cropper().Rounding() != cropper.RoundReal {
		t.Errorf("Expected real rounding, got %v", ic.Cropper().Rounding())
	}

	// jpeg is not enabled
	path := writeJPEG(t, 20, 10)
	if _, err := ic.CropBoxForFile(path, cropper.Square); !errors.Is(err, analyzer.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCropBoxForFile(t *testing.T) {
	ic := New()
	path := writeJPEG(t, 1000, 500)

	result, err := ic.CropBoxForFile(path, cropper.Square)
	if err != nil {
		t.Fatalf("CropBoxForFile failed: %v", err)
	}

	want := types.CropBox{Left: 250, Top: 0, Right: 750, Bottom: 500}
	if result.Box != want {
		t.Errorf("Expected %+v, got %+v", want, result.Box)
	}
}

func TestCropBoxForReader(t *testing.T) {
	ic := New()
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(400, 400)); err != nil {
		t.Fatal(err)
	}

	result, err := ic.CropBoxForReader(&buf, cropper.AspectRatio{Width: 2, Height: 1})
	if err != nil {
		t.Fatalf("CropBoxForReader failed: %v", err)
	}

	want := types.CropBox{Left: 0, Top: 100, Right: 400, Bottom: 300}
	if result.Box != want {
		t.Errorf("Expected %+v, got %+v", want, result.Box)
	}
}

func TestTransformRequestForFile(t *testing.T) {
	ic := New()
	path := writeJPEG(t, 640, 360)

	req, err := ic.TransformRequestForFile(path, cropper.Portrait)
	if err != nil {
		t.Fatalf("TransformRequestForFile failed: %v", err)
	}

	if req.AspectRatio != [2]int{3, 4} {
		t.Errorf("Expected [3 4], got %v", req.AspectRatio)
	}
	if req.Box.CropSpec() != "270x360+185+0" {
		t.Errorf("Unexpected crop spec %s", req.Box.CropSpec())
	}

	if _, err := ic.TransformRequestForFile(filepath.Join(t.TempDir(), "missing.jpg"), cropper.Square); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPreviewFile(t *testing.T) {
	ic := New()
	path := writeJPEG(t, 800, 400)

	img, result, err := ic.PreviewFile(path, cropper.Square, 200)
	if err != nil {
		t.Fatalf("PreviewFile failed: %v", err)
	}

	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("Expected 200x100 preview, got %v", img.Bounds())
	}

	if result.Box.Width() != 400 || result.Box.Height() != 400 {
		t.Errorf("Expected 400x400 box, got %vx%v", result.Box.Width(), result.Box.Height())
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected %s, got %s", Version, GetVersion())
	}
}
