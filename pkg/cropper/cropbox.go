package cropper

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/menta2k/image-cropper/pkg/types"
)

// ErrInvalidInput is returned for non-positive or non-finite dimensions and ratios
var ErrInvalidInput = errors.New("invalid input")

// Rounding selects the coordinate representation of a computed crop box
type Rounding int

const (
	// RoundReal keeps real-valued coordinates. The box ratio is exact.
	RoundReal Rounding = iota
	// RoundFloor produces integer pixel coordinates. Box sizes and the
	// top-left corner are floored, so rounding can only shrink the box.
	RoundFloor
)

// snapEpsilon absorbs floating-point noise around whole pixel values
const snapEpsilon = 1e-6

func (r Rounding) String() string {
	switch r {
	case RoundReal:
		return "real"
	case RoundFloor:
		return "floor"
	default:
		return fmt.Sprintf("Rounding(%d)", int(r))
	}
}

// ParseRounding parses "real" or "floor"
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "real", "float":
		return RoundReal, nil
	case "floor", "int", "integer":
		return RoundFloor, nil
	default:
		return 0, fmt.Errorf("%w: unknown rounding %q (use floor or real)", ErrInvalidInput, s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Rounding) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Rounding) UnmarshalText(text []byte) error {
	v, err := ParseRounding(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// CalculateCropBox returns the largest box with the given aspect ratio
// (width/height) that fits inside the image, centered over it.
//
// The dimension that runs out first is the binding one: a ratio narrower
// than the image keeps the full height, anything else keeps the full width.
// The result never extends past the image bounds. With RoundFloor the ratio
// is off by less than one pixel in the derived dimension.
func CalculateCropBox(dims types.ImageDimensions, aspectRatio float64, rounding Rounding) (types.CropBox, error) {
	if dims.Width <= 0 || dims.Height <= 0 {
		return types.CropBox{}, fmt.Errorf("%w: image dimensions %dx%d must be positive", ErrInvalidInput, dims.Width, dims.Height)
	}
	if math.IsNaN(aspectRatio) || math.IsInf(aspectRatio, 0) || aspectRatio <= 0 {
		return types.CropBox{}, fmt.Errorf("%w: aspect ratio %v must be positive and finite", ErrInvalidInput, aspectRatio)
	}
	if rounding != RoundReal && rounding != RoundFloor {
		return types.CropBox{}, fmt.Errorf("%w: unknown rounding %v", ErrInvalidInput, rounding)
	}

	width, height := float64(dims.Width), float64(dims.Height)
	imageRatio := width / height

	var boxWidth, boxHeight float64
	if aspectRatio <= imageRatio {
		boxHeight = height
		boxWidth = height * aspectRatio
	} else {
		boxWidth = width
		boxHeight = width / aspectRatio
	}

	// Near-equal ratios can overshoot by an ulp. Scale both sides by the
	// same factor so the ratio survives the correction.
	if boxWidth > width {
		boxHeight *= width / boxWidth
		boxWidth = width
	}
	if boxHeight > height {
		boxWidth *= height / boxHeight
		boxHeight = height
	}

	// Bounds are whole numbers, so snapping can never push a side past them.
	// Sides never snap down to zero.
	boxWidth = snap(boxWidth)
	boxHeight = snap(boxHeight)

	if rounding == RoundFloor {
		boxWidth = math.Floor(boxWidth)
		boxHeight = math.Floor(boxHeight)
	}

	left := (width - boxWidth) / 2
	top := (height - boxHeight) / 2
	if rounding == RoundFloor {
		left = math.Floor(left)
		top = math.Floor(top)
	}

	return types.CropBox{
		Left:   left,
		Top:    top,
		Right:  left + boxWidth,
		Bottom: top + boxHeight,
	}, nil
}

func snap(v float64) float64 {
	if r := math.Round(v); r >= 1 && math.Abs(v-r) < snapEpsilon {
		return r
	}
	return v
}
