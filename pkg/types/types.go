package types

import (
	"fmt"
	"image"
	"math"
)

// ImageDimensions is the full pixel extent of a source image
type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Ratio returns width divided by height
func (d ImageDimensions) Ratio() float64 {
	return float64(d.Width) / float64(d.Height)
}

// CropBox is a rectangle in source-image pixel coordinates
type CropBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func (b CropBox) Width() float64 {
	return b.Right - b.Left
}

func (b CropBox) Height() float64 {
	return b.Bottom - b.Top
}

// Empty reports whether the box has zero area. A zero-area box is a valid
// result for very small images under integer rounding.
func (b CropBox) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Ratio returns the box's width divided by its height, or 0 for an empty box
func (b CropBox) Ratio() float64 {
	if b.Empty() {
		return 0
	}
	return b.Width() / b.Height()
}

// Rect converts the box to an integer rectangle. Edges are rounded inward so
// the rectangle never grows past the box.
func (b CropBox) Rect() image.Rectangle {
	return image.Rect(
		int(math.Ceil(b.Left)),
		int(math.Ceil(b.Top)),
		int(math.Floor(b.Right)),
		int(math.Floor(b.Bottom)),
	)
}

// CropSpec formats the box as a jpegtran crop geometry: WxH+L+T
func (b CropBox) CropSpec() string {
	r := b.Rect()
	return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}

// ImageInfo is the collection position reported by the transform service
type ImageInfo struct {
	Current string  `json:"current"`
	Prev    *string `json:"prev"`
	Next    *string `json:"next"`
	Total   int     `json:"total"`
}

// TransformRequest is the body posted to the transform service
type TransformRequest struct {
	Box         CropBox `json:"box"`
	AspectRatio [2]int  `json:"aspectRatio"`
}
