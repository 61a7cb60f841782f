// Package imagecropper computes centered aspect-ratio crop boxes for images
// and hands them to a remote transform service that performs the crop.
//
// The core is cropper.CalculateCropBox: given image dimensions and a target
// ratio it returns the largest box of that ratio that fits inside the image,
// centered over it. It is a pure function and safe for concurrent use.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		imagecropper "github.com/menta2k/image-cropper"
//		"github.com/menta2k/image-cropper/pkg/cropper"
//		"github.com/menta2k/image-cropper/pkg/transform"
//	)
//
//	func main() {
//		ic := imagecropper.New()
//
//		// Read dimensions and compute a square crop
//		req, err := ic.TransformRequestForFile("photo.jpg", cropper.Square)
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("crop: %s\n", req.Box.CropSpec())
//
//		// Ask the service to crop its copy of the image
//		client, err := transform.NewClient("http://localhost:5000")
//		if err != nil {
//			log.Fatal(err)
//		}
//		if _, err := client.Transform(context.Background(), "photo.jpg", req); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of four components:
//
// 1. Cropper (pkg/cropper): crop box geometry and aspect ratios
// 2. Analyzer (pkg/analyzer): image dimensions from file headers
// 3. Preview (pkg/preview): crop box overlays for display
// 4. Transform (pkg/transform): client for the remote transform service
package imagecropper

import (
	"fmt"
	"image"
	"io"

	"github.com/menta2k/image-cropper/pkg/analyzer"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/preview"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Version of the image cropper library
const Version = "1.0.0"

// ImageCropper ties together dimension inspection, crop geometry and previews
type ImageCropper struct {
	analyzer *analyzer.ImageAnalyzer
	cropper  *cropper.Cropper
	preview  *preview.Renderer
}

// New creates a new ImageCropper with default configuration
func New() *ImageCropper {
	return &ImageCropper{
		analyzer: analyzer.New(),
		cropper:  cropper.New(),
		preview:  preview.New(),
	}
}

// NewWithConfig creates a new ImageCropper with custom configuration
func NewWithConfig(analyzerConfig analyzer.Config, cropConfig cropper.CropConfig, previewConfig preview.Config) *ImageCropper {
	return &ImageCropper{
		analyzer: analyzer.NewWithConfig(analyzerConfig),
		cropper:  cropper.NewWithConfig(cropConfig),
		preview:  preview.NewWithConfig(previewConfig),
	}
}

// Cropper returns the underlying crop box calculator
func (ic *ImageCropper) Cropper() *cropper.Cropper {
	return ic.cropper
}

// Analyzer returns the underlying image inspector
func (ic *ImageCropper) Analyzer() *analyzer.ImageAnalyzer {
	return ic.analyzer
}

// DimensionsForFile reads the pixel size of an image file
func (ic *ImageCropper) DimensionsForFile(path string) (types.ImageDimensions, error) {
	dims, _, err := ic.analyzer.DimensionsFromFile(path)
	return dims, err
}

// CropBoxForFile computes the crop box for an image file
func (ic *ImageCropper) CropBoxForFile(path string, aspectRatio cropper.AspectRatio) (cropper.CropResult, error) {
	dims, err := ic.DimensionsForFile(path)
	if err != nil {
		return cropper.CropResult{}, fmt.Errorf("failed to read dimensions: %w", err)
	}
	return ic.cropper.CropBoxForAspectRatio(dims, aspectRatio)
}

// CropBoxForReader computes the crop box for an encoded image
func (ic *ImageCropper) CropBoxForReader(r io.Reader, aspectRatio cropper.AspectRatio) (cropper.CropResult, error) {
	dims, _, err := ic.analyzer.Dimensions(r)
	if err != nil {
		return cropper.CropResult{}, fmt.Errorf("failed to read dimensions: %w", err)
	}
	return ic.cropper.CropBoxForAspectRatio(dims, aspectRatio)
}

// TransformRequestForFile builds the transform service payload for an image file
func (ic *ImageCropper) TransformRequestForFile(path string, aspectRatio cropper.AspectRatio) (types.TransformRequest, error) {
	dims, err := ic.DimensionsForFile(path)
	if err != nil {
		return types.TransformRequest{}, fmt.Errorf("failed to read dimensions: %w", err)
	}
	return ic.cropper.TransformRequest(dims, aspectRatio)
}

// Preview renders box over img, scaled down so the longer side is at most
// maxDim (0 keeps the original size). box is in the coordinates of dims.
func (ic *ImageCropper) Preview(img image.Image, dims types.ImageDimensions, box types.CropBox, maxDim int) image.Image {
	thumb := preview.Thumbnail(img, maxDim)
	b := thumb.Bounds()
	scaled := preview.ScaleBox(box, dims, types.ImageDimensions{Width: b.Dx(), Height: b.Dy()})
	return ic.preview.Overlay(thumb, scaled)
}

// PreviewFile computes the crop box for an image file and renders it as an overlay
func (ic *ImageCropper) PreviewFile(path string, aspectRatio cropper.AspectRatio, maxDim int) (image.Image, cropper.CropResult, error) {
	result, err := ic.CropBoxForFile(path, aspectRatio)
	if err != nil {
		return nil, cropper.CropResult{}, err
	}

	img, err := ic.analyzer.LoadImage(path)
	if err != nil {
		return nil, cropper.CropResult{}, fmt.Errorf("failed to load image: %w", err)
	}

	info := ic.analyzer.GetImageInfo(img)
	return ic.Preview(img, info.Dimensions(), result.Box, maxDim), result, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
