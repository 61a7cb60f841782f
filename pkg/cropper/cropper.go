package cropper

import (
	"fmt"
	"image"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/menta2k/image-cropper/pkg/types"
)

// Cropper computes centered crop boxes with a fixed rounding policy
type Cropper struct {
	config CropConfig
}

// CropConfig holds configuration for crop box calculation
type CropConfig struct {
	Rounding Rounding
}

// AspectRatio represents common aspect ratios
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Common aspect ratios
var (
	Square     = AspectRatio{1, 1, "square"}
	Portrait   = AspectRatio{3, 4, "portrait"}
	Landscape  = AspectRatio{4, 3, "landscape"}
	Widescreen = AspectRatio{16, 9, "widescreen"}
	Instagram  = AspectRatio{4, 5, "instagram"}
	Story      = AspectRatio{9, 16, "story"}
)

// CommonAspectRatios returns a list of commonly used aspect ratios
func CommonAspectRatios() []AspectRatio {
	return []AspectRatio{Square, Portrait, Landscape, Widescreen, Instagram, Story}
}

// Ratio returns width divided by height
func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

// Pair returns the ratio as the [width, height] pair the transform service expects
func (a AspectRatio) Pair() [2]int {
	return [2]int{a.Width, a.Height}
}

func (a AspectRatio) String() string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("%d:%d", a.Width, a.Height)
}

// Validate checks that both terms are positive
func (a AspectRatio) Validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("%w: aspect ratio %d:%d must have positive terms", ErrInvalidInput, a.Width, a.Height)
	}
	return nil
}

// ParseAspectRatio accepts a preset name ("square"), a pair ("16:9", "4x5",
// "3/2") or a decimal ("1.5"). Decimals are converted to the exact fraction
// they denote.
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.TrimSpace(s)
	for _, preset := range CommonAspectRatios() {
		if strings.EqualFold(s, preset.Name) {
			return preset, nil
		}
	}

	if i := strings.IndexAny(s, ":x/"); i > 0 {
		w, errW := strconv.Atoi(strings.TrimSpace(s[:i]))
		h, errH := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if errW != nil || errH != nil {
			return AspectRatio{}, fmt.Errorf("%w: malformed aspect ratio %q", ErrInvalidInput, s)
		}
		ar := AspectRatio{Width: w, Height: h}
		return ar, ar.Validate()
	}

	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return AspectRatio{}, fmt.Errorf("%w: malformed aspect ratio %q", ErrInvalidInput, s)
	}
	if !rat.Num().IsInt64() || !rat.Denom().IsInt64() || rat.Num().Int64() > math.MaxInt32 || rat.Denom().Int64() > math.MaxInt32 {
		return AspectRatio{}, fmt.Errorf("%w: aspect ratio %q is out of range", ErrInvalidInput, s)
	}
	ar := AspectRatio{Width: int(rat.Num().Int64()), Height: int(rat.Denom().Int64())}
	return ar, ar.Validate()
}

// New creates a new Cropper producing integer pixel coordinates
func New() *Cropper {
	return &Cropper{
		config: CropConfig{
			Rounding: RoundFloor,
		},
	}
}

// NewWithConfig creates a new Cropper with custom configuration
func NewWithConfig(config CropConfig) *Cropper {
	return &Cropper{config: config}
}

// Rounding returns the configured rounding policy
func (c *Cropper) Rounding() Rounding {
	return c.config.Rounding
}

// CropResult contains a computed crop box and how much of the image it keeps
type CropResult struct {
	Box         types.CropBox
	AspectRatio AspectRatio
	Coverage    float64
}

// CropBox computes the centered crop box for a ratio given as a float
func (c *Cropper) CropBox(dims types.ImageDimensions, ratio float64) (types.CropBox, error) {
	return CalculateCropBox(dims, ratio, c.config.Rounding)
}

// CropBoxForAspectRatio computes the centered crop box for a named aspect ratio
func (c *Cropper) CropBoxForAspectRatio(dims types.ImageDimensions, aspectRatio AspectRatio) (CropResult, error) {
	if err := aspectRatio.Validate(); err != nil {
		return CropResult{}, err
	}

	box, err := c.CropBox(dims, aspectRatio.Ratio())
	if err != nil {
		return CropResult{}, err
	}

	return CropResult{
		Box:         box,
		AspectRatio: aspectRatio,
		Coverage:    coverage(dims, box),
	}, nil
}

// CropBoxes computes crop boxes for several aspect ratios of the same image
func (c *Cropper) CropBoxes(dims types.ImageDimensions, ratios []AspectRatio) ([]CropResult, error) {
	results := make([]CropResult, 0, len(ratios))

	for _, ratio := range ratios {
		result, err := c.CropBoxForAspectRatio(dims, ratio)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s crop: %w", ratio, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// CropBoxForImage computes the crop box for an already decoded image
func (c *Cropper) CropBoxForImage(img image.Image, ratio float64) (types.CropBox, error) {
	bounds := img.Bounds()
	return c.CropBox(types.ImageDimensions{Width: bounds.Dx(), Height: bounds.Dy()}, ratio)
}

// TransformRequest builds the payload for the transform service and checks it
// against the rules the service enforces before accepting a crop. The service
// crops whole pixels, so the box is always computed with RoundFloor whatever
// the configured rounding.
func (c *Cropper) TransformRequest(dims types.ImageDimensions, aspectRatio AspectRatio) (types.TransformRequest, error) {
	if err := aspectRatio.Validate(); err != nil {
		return types.TransformRequest{}, err
	}
	box, err := CalculateCropBox(dims, aspectRatio.Ratio(), RoundFloor)
	if err != nil {
		return types.TransformRequest{}, err
	}
	if err := ValidateForImage(box, dims); err != nil {
		return types.TransformRequest{}, err
	}
	if err := ValidateForAspectRatio(box, aspectRatio); err != nil {
		return types.TransformRequest{}, err
	}

	return types.TransformRequest{
		Box:         box,
		AspectRatio: aspectRatio.Pair(),
	}, nil
}

func coverage(dims types.ImageDimensions, box types.CropBox) float64 {
	if box.Empty() {
		return 0
	}
	return (box.Width() * box.Height()) / (float64(dims.Width) * float64(dims.Height))
}
