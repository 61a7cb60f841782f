package cropper

import (
	"errors"
	"fmt"
	"math"

	"github.com/menta2k/image-cropper/pkg/types"
)

// ErrInvalidBox is returned when a crop box would be rejected by the transform service
var ErrInvalidBox = errors.New("invalid crop box")

// RatioTolerance is the largest accepted difference between a box ratio and
// the requested ratio
const RatioTolerance = 0.01

// ValidateForAspectRatio checks that the box ratio matches the requested one
func ValidateForAspectRatio(box types.CropBox, aspectRatio AspectRatio) error {
	if err := aspectRatio.Validate(); err != nil {
		return err
	}
	if box.Empty() {
		return fmt.Errorf("%w: box has zero area", ErrInvalidBox)
	}
	if diff := math.Abs(box.Ratio() - aspectRatio.Ratio()); diff >= RatioTolerance {
		return fmt.Errorf("%w: ratio %.4f does not match %s (%.4f)", ErrInvalidBox, box.Ratio(), aspectRatio, aspectRatio.Ratio())
	}
	return nil
}

// ValidateForImage checks that the box lies inside the image and spans it
// fully in at least one dimension
func ValidateForImage(box types.CropBox, dims types.ImageDimensions) error {
	width, height := float64(dims.Width), float64(dims.Height)

	if box.Left < 0 || box.Top < 0 || box.Right > width || box.Bottom > height {
		return fmt.Errorf("%w: box %+v exceeds image %dx%d", ErrInvalidBox, box, dims.Width, dims.Height)
	}
	if box.Empty() {
		return fmt.Errorf("%w: box has zero area", ErrInvalidBox)
	}
	if math.Abs(box.Width()-width) >= 1 && math.Abs(box.Height()-height) >= 1 {
		return fmt.Errorf("%w: box %.0fx%.0f is not maximized for image %dx%d", ErrInvalidBox, box.Width(), box.Height(), dims.Width, dims.Height)
	}
	return nil
}
