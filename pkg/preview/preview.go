package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/image-cropper/pkg/types"
)

// Renderer draws crop box overlays for previews
type Renderer struct {
	config Config
}

// Config holds the overlay appearance
type Config struct {
	Stroke      color.NRGBA
	Center      color.NRGBA
	ShadeAlpha  float64 // 0 leaves the area outside the box untouched, 1 blacks it out
	StrokeRatio float64 // stroke width as a fraction of the shorter image side
}

// DefaultConfig returns the standard overlay appearance
func DefaultConfig() Config {
	return Config{
		Stroke:      color.NRGBA{255, 204, 0, 255},
		Center:      color.NRGBA{255, 0, 0, 255},
		ShadeAlpha:  0.5,
		StrokeRatio: 0.004,
	}
}

// New creates a Renderer with the default appearance
func New() *Renderer {
	return &Renderer{config: DefaultConfig()}
}

// NewWithConfig creates a Renderer with a custom appearance
func NewWithConfig(config Config) *Renderer {
	return &Renderer{config: config}
}

// Overlay returns a copy of img with everything outside box shaded and the
// box outlined. box is in pixel coordinates relative to img.Bounds().Min.
func (r *Renderer) Overlay(img image.Image, box types.CropBox) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	rect := box.Rect().Intersect(nrgba.Bounds())

	if r.config.ShadeAlpha > 0 {
		keep := 1 - clamp(r.config.ShadeAlpha, 0, 1)
		for y := 0; y < h; y++ {
			i := y * nrgba.Stride
			for x := 0; x < w; x++ {
				if !(image.Point{x, y}).In(rect) {
					nrgba.Pix[i+0] = uint8(float64(nrgba.Pix[i+0]) * keep)
					nrgba.Pix[i+1] = uint8(float64(nrgba.Pix[i+1]) * keep)
					nrgba.Pix[i+2] = uint8(float64(nrgba.Pix[i+2]) * keep)
				}
				i += 4
			}
		}
	}

	if rect.Empty() {
		return nrgba
	}

	stroke := int(math.Max(1, r.config.StrokeRatio*float64(min(w, h))))
	cross := int(math.Max(4, 0.01*float64(min(w, h))))

	for s := 0; s < stroke; s++ {
		drawHLine(nrgba, rect.Min.Y+s, rect.Min.X, rect.Max.X, r.config.Stroke)
		drawHLine(nrgba, rect.Max.Y-1-s, rect.Min.X, rect.Max.X, r.config.Stroke)
		drawVLine(nrgba, rect.Min.X+s, rect.Min.Y, rect.Max.Y, r.config.Stroke)
		drawVLine(nrgba, rect.Max.X-1-s, rect.Min.Y, rect.Max.Y, r.config.Stroke)
	}

	cx := int((box.Left + box.Right) / 2)
	cy := int((box.Top + box.Bottom) / 2)
	drawHLine(nrgba, cy, cx-cross, cx+cross, r.config.Center)
	drawVLine(nrgba, cx, cy-cross, cy+cross, r.config.Center)

	return nrgba
}

// Thumbnail scales img down so its longer side is at most maxDim. Images
// already small enough are returned as is.
func Thumbnail(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// ScaleBox maps a box computed for an image of size from onto an image of size to
func ScaleBox(box types.CropBox, from, to types.ImageDimensions) types.CropBox {
	sx := float64(to.Width) / float64(from.Width)
	sy := float64(to.Height) / float64(from.Height)
	return types.CropBox{
		Left:   box.Left * sx,
		Top:    box.Top * sy,
		Right:  box.Right * sx,
		Bottom: box.Bottom * sy,
	}
}

// Save saves an image to a file with the specified format and quality. The
// format wins over the file extension.
func Save(img image.Image, path, format string, quality int, lossless bool) error {
	format = strings.ToLower(format)
	switch format {
	case "webp", "png", "jpg", "jpeg":
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	switch format {
	case "webp":
		err = webp.Encode(f, img, &webp.Options{Lossless: lossless, Quality: float32(quality)})
	case "png":
		err = imaging.Encode(f, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		err = imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return f.Close()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0 = max(x0, 0)
	x1 = min(x1, img.Bounds().Dx())
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	y0 = max(y0, 0)
	y1 = min(y1, img.Bounds().Dy())
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
