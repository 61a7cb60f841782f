package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":     "jpg",
		"dir/a.b.webp":  "webp",
		"no_extension":  "",
		"trailing.dot.": "",
	}
	for in, want := range tests {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.webp", "e.gif"} {
		if !IsImageFile(name) {
			t.Errorf("%s should be an image file", name)
		}
	}
	for _, name := range []string{"a.txt", "b", "c.tiff"} {
		if IsImageFile(name) {
			t.Errorf("%s should not be an image file", name)
		}
	}
}

func TestGeneratePreviewFilename(t *testing.T) {
	got := GeneratePreviewFilename("/photos/beach.jpg", "out", "16:9", "_preview", "png")
	want := filepath.Join("out", "beach_16x9_preview.png")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	got = GeneratePreviewFilename("beach.webp", "out", "square", "", "")
	want = filepath.Join("out", "beach_square.webp")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(" a/b\\c?.jpg. "); got != "a_b_c_.jpg" {
		t.Errorf("Unexpected sanitized name %q", got)
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}

	path := filepath.Join(dir, "f.txt")
	if FileExists(path) {
		t.Error("File should not exist yet")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("File should exist")
	}
	if FileExists(dir) {
		t.Error("Directory should not count as a file")
	}
}
