package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	imagecropper "github.com/menta2k/image-cropper"
	"github.com/menta2k/image-cropper/internal/config"
	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/analyzer"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/preview"
	"github.com/menta2k/image-cropper/pkg/transform"
	"github.com/menta2k/image-cropper/pkg/types"
)

// output is what the command prints on stdout
type output struct {
	Source      string                `json:"source"`
	Dimensions  types.ImageDimensions `json:"dimensions"`
	AspectRatio [2]int                `json:"aspectRatio"`
	Rounding    cropper.Rounding      `json:"rounding"`
	Box         types.CropBox         `json:"box"`
	CropSpec    string                `json:"cropSpec"`
	Coverage    float64               `json:"coverage"`
	Preview     string                `json:"preview,omitempty"`
	Result      string                `json:"result,omitempty"`
}

func main() {
	var in, base, ratio, rounding, previewPath, configPath string
	var index int
	var apply bool

	flag.StringVar(&in, "in", "", "local image path (jpg/png/webp/gif)")
	flag.IntVar(&index, "index", -1, "collection index on the transform service (used when -in is empty)")
	flag.StringVar(&base, "base", "", "transform service base URL (default from config)")
	flag.StringVar(&ratio, "ratio", "", "target aspect ratio: 16:9, 1.5 or a preset name (default from config)")
	flag.StringVar(&rounding, "rounding", "", "coordinate rounding: floor|real (default from config)")
	flag.StringVar(&previewPath, "preview", "", "write a crop overlay preview to this path ('auto' derives one)")
	flag.StringVar(&configPath, "config", "", "config file (.json or .toml)")
	flag.BoolVar(&apply, "apply", false, "submit the crop to the transform service")

	flag.Parse()
	if in == "" && index < 0 {
		log.Fatalf("usage: %s (-in image.jpg | -index N) [-ratio 16:9] [-rounding floor|real] [-preview out.png] [-base URL] [-apply]", filepath.Base(os.Args[0]))
	}

	cfg := loadConfig(configPath)
	if base != "" {
		cfg.Transform.BaseURL = base
	}
	if ratio != "" {
		cfg.Cropper.DefaultRatio = ratio
	}
	if rounding != "" {
		r, err := cropper.ParseRounding(rounding)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Cropper.Rounding = r
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	aspectRatio, err := cropper.ParseAspectRatio(cfg.Cropper.DefaultRatio)
	if err != nil {
		log.Fatal(err)
	}

	ic := imagecropper.NewWithConfig(
		analyzer.Config{SupportedFormats: cfg.Analyzer.SupportedFormats},
		cropper.CropConfig{Rounding: cfg.Cropper.Rounding},
		previewConfig(cfg.Preview),
	)

	var client *transform.Client
	if in == "" || apply {
		client, err = transform.NewClient(cfg.Transform.BaseURL,
			transform.WithTimeout(cfg.Transform.Timeout.Duration),
			transform.WithUserAgent(cfg.Transform.UserAgent))
		if err != nil {
			log.Fatalf("Failed to create transform client: %v", err)
		}
	}

	ctx := context.Background()

	// Dimensions first, from disk or from the service
	var imageID string
	var data []byte
	if in != "" {
		imageID = filepath.Base(in)
		data, err = readLocalImage(in)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		info, err := client.Iter(ctx, index)
		if err != nil {
			log.Fatalf("iter %d failed: %v", index, err)
		}
		imageID = info.Current
		log.Printf("image %q (%d of %d)", imageID, index+1, info.Total)

		data, err = client.FetchImage(ctx, imageID)
		if err != nil {
			log.Fatalf("fetch %s failed: %v", client.ImageURL(imageID), err)
		}
	}

	dims, format, err := ic.Analyzer().DimensionsFromBytes(data)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%s: %dx%d %s", imageID, dims.Width, dims.Height, format)

	// Then the box
	result, err := ic.Cropper().CropBoxForAspectRatio(dims, aspectRatio)
	if err != nil {
		log.Fatal(err)
	}
	if result.Box.Empty() {
		log.Fatalf("image %dx%d is too small for a %s crop", dims.Width, dims.Height, aspectRatio)
	}

	out := output{
		Source:      imageID,
		Dimensions:  dims,
		AspectRatio: aspectRatio.Pair(),
		Rounding:    cfg.Cropper.Rounding,
		Box:         result.Box,
		CropSpec:    result.Box.CropSpec(),
		Coverage:    result.Coverage,
	}

	if previewPath != "" {
		if previewPath == "auto" {
			if err := utils.EnsureDir(cfg.Preview.OutputDir); err != nil {
				log.Fatal(err)
			}
			previewPath = utils.GeneratePreviewFilename(imageID, cfg.Preview.OutputDir, aspectRatio.String(), cfg.Preview.Suffix, cfg.Preview.Format)
		}
		img, err := ic.Analyzer().LoadImageFromReader(bytes.NewReader(data))
		if err != nil {
			log.Fatal(err)
		}
		overlay := ic.Preview(img, dims, result.Box, cfg.Preview.MaxDim)
		if err := preview.Save(overlay, previewPath, previewFormat(previewPath, cfg.Preview.Format), cfg.Preview.Quality, cfg.Preview.Lossless); err != nil {
			log.Printf("preview save failed: %v", err)
		} else {
			log.Printf("wrote %s", previewPath)
			out.Preview = previewPath
		}
	}

	// Finally the transform, only once the box is known
	if apply {
		if imageID == transform.ExampleImageID {
			log.Fatalf("the %q image cannot be transformed", transform.ExampleImageID)
		}
		req, err := ic.Cropper().TransformRequest(dims, aspectRatio)
		if err != nil {
			log.Fatal(err)
		}
		newID, err := client.Transform(ctx, imageID, req)
		if err != nil {
			log.Fatalf("transform %s failed: %v", imageID, err)
		}
		out.Result = strings.TrimSpace(newID)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		path = config.GetConfigPath()
		if !utils.FileExists(path) {
			return config.Default()
		}
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// readLocalImage reads an image file, refusing paths without an image extension
func readLocalImage(path string) ([]byte, error) {
	if !utils.IsImageFile(path) {
		return nil, fmt.Errorf("%s: not an image file (want jpg, png, gif or webp)", path)
	}
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("%s: no such file", path)
	}
	return os.ReadFile(path)
}

func previewConfig(pc config.PreviewConfig) preview.Config {
	c := preview.DefaultConfig()
	c.ShadeAlpha = pc.ShadeAlpha
	return c
}

// previewFormat prefers the extension of the output path over the configured format
func previewFormat(path, fallback string) string {
	switch ext := utils.GetFileExtension(path); ext {
	case "png", "jpg", "jpeg", "webp":
		return ext
	}
	return fallback
}
