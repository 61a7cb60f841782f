package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/menta2k/image-cropper/pkg/cropper"
)

// Config holds the application configuration
type Config struct {
	Transform TransformConfig `json:"transform" toml:"transform"`
	Cropper   CropperConfig   `json:"cropper" toml:"cropper"`
	Preview   PreviewConfig   `json:"preview" toml:"preview"`
	Analyzer  AnalyzerConfig  `json:"analyzer" toml:"analyzer"`
}

// TransformConfig holds the transform service connection
type TransformConfig struct {
	BaseURL   string   `json:"base_url" toml:"base_url"`
	Timeout   Duration `json:"timeout" toml:"timeout"`
	UserAgent string   `json:"user_agent" toml:"user_agent"`
}

// CropperConfig holds configuration for crop box calculation
type CropperConfig struct {
	Rounding     cropper.Rounding `json:"rounding" toml:"rounding"`
	DefaultRatio string           `json:"default_ratio" toml:"default_ratio"`
}

// PreviewConfig holds configuration for overlay previews
type PreviewConfig struct {
	Format     string  `json:"format" toml:"format"`
	Quality    int     `json:"quality" toml:"quality"`
	Lossless   bool    `json:"lossless" toml:"lossless"`
	MaxDim     int     `json:"max_dim" toml:"max_dim"`
	ShadeAlpha float64 `json:"shade_alpha" toml:"shade_alpha"`
	OutputDir  string  `json:"output_dir" toml:"output_dir"`
	Suffix     string  `json:"suffix" toml:"suffix"`
}

// AnalyzerConfig holds configuration for image inspection
type AnalyzerConfig struct {
	SupportedFormats []string `json:"supported_formats" toml:"supported_formats"`
}

// Duration is a time.Duration written as "30s" in config files
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Transform: TransformConfig{
			BaseURL:   "http://localhost:5000",
			Timeout:   Duration{30 * time.Second},
			UserAgent: "image-cropper/1.0",
		},
		Cropper: CropperConfig{
			Rounding:     cropper.RoundFloor,
			DefaultRatio: "square",
		},
		Preview: PreviewConfig{
			Format:     "png",
			Quality:    92,
			Lossless:   false,
			MaxDim:     1536,
			ShadeAlpha: 0.5,
			OutputDir:  "./out",
			Suffix:     "_preview",
		},
		Analyzer: AnalyzerConfig{
			SupportedFormats: []string{"jpeg", "png", "webp", "gif"},
		},
	}
}

// LoadFromFile loads configuration from a JSON or TOML file. Values missing
// from the file keep their defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isTOML(filename) {
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON or TOML file, chosen by extension
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	if isTOML(filename) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Transform.Timeout.Duration < 0 {
		return fmt.Errorf("transform.timeout must not be negative")
	}

	if c.Cropper.Rounding != cropper.RoundReal && c.Cropper.Rounding != cropper.RoundFloor {
		return fmt.Errorf("cropper.rounding must be floor or real")
	}

	if c.Cropper.DefaultRatio != "" {
		if _, err := cropper.ParseAspectRatio(c.Cropper.DefaultRatio); err != nil {
			return fmt.Errorf("cropper.default_ratio: %w", err)
		}
	}

	switch strings.ToLower(c.Preview.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("preview.format must be png, jpg or webp")
	}

	if c.Preview.Quality < 1 || c.Preview.Quality > 100 {
		return fmt.Errorf("preview.quality must be between 1 and 100")
	}

	if c.Preview.MaxDim < 0 {
		return fmt.Errorf("preview.max_dim must not be negative")
	}

	if c.Preview.ShadeAlpha < 0 || c.Preview.ShadeAlpha > 1 {
		return fmt.Errorf("preview.shade_alpha must be between 0 and 1")
	}

	if len(c.Analyzer.SupportedFormats) == 0 {
		return fmt.Errorf("analyzer.supported_formats cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-cropper", "config.json")
}

func isTOML(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}
