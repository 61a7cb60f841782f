package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-cropper/pkg/cropper"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cropper.RoundFloor, cfg.Cropper.Rounding)
	assert.Equal(t, 30*time.Second, cfg.Transform.Timeout.Duration)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
  "transform": {"base_url": "http://photos.local:5000", "timeout": "5s"},
  "cropper": {"rounding": "real", "default_ratio": "16:9"}
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://photos.local:5000", cfg.Transform.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Transform.Timeout.Duration)
	assert.Equal(t, cropper.RoundReal, cfg.Cropper.Rounding)
	assert.Equal(t, "16:9", cfg.Cropper.DefaultRatio)

	// Untouched sections keep defaults
	assert.Equal(t, "png", cfg.Preview.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[transform]
base_url = "http://localhost:8000"
timeout = "1m"

[cropper]
rounding = "floor"
default_ratio = "portrait"

[preview]
format = "webp"
quality = 80
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.Transform.BaseURL)
	assert.Equal(t, time.Minute, cfg.Transform.Timeout.Duration)
	assert.Equal(t, "webp", cfg.Preview.Format)
	assert.Equal(t, 80, cfg.Preview.Quality)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"cropper": {"rounding": "ceil"}}`), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)

	badTOML := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(badTOML, []byte("[transform]\ntimeout = \"soon\"\n"), 0o644))
	_, err = LoadFromFile(badTOML)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"nested/config.json", "nested/config.toml"} {
		cfg := Default()
		cfg.Cropper.Rounding = cropper.RoundReal
		cfg.Transform.Timeout = Duration{90 * time.Second}

		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveToFile(path))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, loaded, name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative timeout", func(c *Config) { c.Transform.Timeout = Duration{-time.Second} }},
		{"unknown rounding", func(c *Config) { c.Cropper.Rounding = cropper.Rounding(9) }},
		{"bad ratio", func(c *Config) { c.Cropper.DefaultRatio = "16:0" }},
		{"bad format", func(c *Config) { c.Preview.Format = "tiff" }},
		{"quality too high", func(c *Config) { c.Preview.Quality = 101 }},
		{"negative max dim", func(c *Config) { c.Preview.MaxDim = -1 }},
		{"shade out of range", func(c *Config) { c.Preview.ShadeAlpha = 1.5 }},
		{"no formats", func(c *Config) { c.Analyzer.SupportedFormats = nil }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		assert.Error(t, cfg.Validate(), tt.name)
	}
}

func TestGetConfigPath(t *testing.T) {
	assert.Contains(t, GetConfigPath(), "config.json")
}
