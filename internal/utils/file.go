package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	switch GetFileExtension(filename) {
	case "jpg", "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}

// GeneratePreviewFilename builds the overlay output path for an image and
// aspect ratio, e.g. out/photo_16x9_preview.png
func GeneratePreviewFilename(source, outputDir, ratio, suffix, format string) string {
	baseName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	if format == "" {
		format = GetFileExtension(source)
		if format == "" {
			format = "png"
		}
	}

	outputName := fmt.Sprintf("%s_%s%s.%s", SanitizeFilename(nameWithoutExt), SanitizeFilename(ratio), suffix, format)
	return filepath.Join(outputDir, outputName)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	// Replace invalid characters with underscores
	result := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "x", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_",
	).Replace(filename)

	// Remove leading/trailing spaces and dots
	return strings.Trim(result, " .")
}
