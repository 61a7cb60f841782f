package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-cropper/pkg/types"
)

// ErrUnsupportedFormat is returned for images whose format is not enabled
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageAnalyzer reads image dimensions without decoding pixel data
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"jpeg", "png", "webp", "gif"},
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// Dimensions reads the pixel size of an image from its header. It returns
// the detected format name alongside.
func (a *ImageAnalyzer) Dimensions(r io.Reader) (types.ImageDimensions, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.ImageDimensions{}, "", fmt.Errorf("failed to read image: %w", err)
	}
	return a.DimensionsFromBytes(data)
}

// DimensionsFromBytes reads the pixel size of an encoded image
func (a *ImageAnalyzer) DimensionsFromBytes(data []byte) (types.ImageDimensions, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Extended WebP variants the x/image decoder rejects
		w, h, _, webpErr := webp.GetInfo(data)
		if webpErr != nil {
			return types.ImageDimensions{}, "", fmt.Errorf("failed to decode image header: %w", err)
		}
		cfg, format = image.Config{Width: w, Height: h}, "webp"
	}

	if !a.isFormatSupported(format) {
		return types.ImageDimensions{}, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return types.ImageDimensions{Width: cfg.Width, Height: cfg.Height}, format, nil
}

// DimensionsFromFile reads the pixel size of an image file
func (a *ImageAnalyzer) DimensionsFromFile(path string) (types.ImageDimensions, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.ImageDimensions{}, "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return a.Dimensions(file)
}

// LoadImage decodes an image file. Pixels stay in stored orientation so that
// crop boxes computed from the header apply to them unchanged.
func (a *ImageAnalyzer) LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return a.LoadImageFromReader(file)
}

// LoadImageFromReader decodes an image from an io.Reader
func (a *ImageAnalyzer) LoadImageFromReader(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if _, _, err := a.DimensionsFromBytes(data); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		if img, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
			return img, nil
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	return ImageInfo{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
		Area:        width * height,
	}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

// Dimensions returns the info as crop input
func (i ImageInfo) Dimensions() types.ImageDimensions {
	return types.ImageDimensions{Width: i.Width, Height: i.Height}
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) || (strings.EqualFold(supported, "jpg") && format == "jpeg") {
			return true
		}
	}
	return false
}
