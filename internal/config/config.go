// Package config loads exporter settings from a TOML or JSON file, the
// environment and command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"mitsuba-export/internal/export"
	"mitsuba-export/internal/mathutil"
)

// EnvMitsubaDir names the renderer build directory when no file or flag
// sets it.
const EnvMitsubaDir = "MITSUBA_DIR"

// Config holds all configurable paths and export settings.
type Config struct {
	// Paths
	Scene      string `json:"scene" toml:"scene" validate:"required"`
	Output     string `json:"output" toml:"output" validate:"required"`
	MitsubaDir string `json:"mitsuba_dir" toml:"mitsuba_dir"`

	// Export settings
	AxisForward      string `json:"axis_forward" toml:"axis_forward"`
	AxisUp           string `json:"axis_up" toml:"axis_up"`
	ExportIDs        bool   `json:"export_ids" toml:"export_ids"`
	IgnoreBackground *bool  `json:"ignore_background" toml:"ignore_background"`
	SplitFiles       bool   `json:"split_files" toml:"split_files"`
	UseSelection     bool   `json:"use_selection" toml:"use_selection"`

	// Assets
	TextureMaxSize int  `json:"texture_max_size" toml:"texture_max_size" validate:"gte=0"`
	Preview        bool `json:"preview" toml:"preview"`
	PreviewSize    int  `json:"preview_size" toml:"preview_size" validate:"gte=0"`
	Supersample    int  `json:"supersample" toml:"supersample" validate:"gte=0,lte=8"`
	Manifest       bool `json:"manifest" toml:"manifest"`

	Workers int  `json:"workers" toml:"workers" validate:"gte=0"`
	Debug   bool `json:"debug" toml:"debug"`
}

// Load reads a config file; the format follows the extension (.toml or
// .json). Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported format (want .toml or .json)", path)
	}
	return cfg, nil
}

// LoadEnv loads KEY=value pairs from the given .env files, or ./.env when
// none are given, without overriding variables already set. Missing files
// are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("config: load env: %w", err)
	}
	return nil
}

// Flags holds CLI flag values that override config file settings. Nil
// pointers are flags that were not given.
type Flags struct {
	Scene          string
	Output         string
	MitsubaDir     string
	AxisForward    string
	AxisUp         string
	ExportIDs      *bool
	KeepBackground *bool
	SplitFiles     *bool
	UseSelection   *bool
	Preview        *bool
	Manifest       *bool
	Workers        int
	Debug          *bool
}

// Resolve applies flags over the file settings, then the environment, then
// defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.MitsubaDir != "" {
		c.MitsubaDir = flags.MitsubaDir
	}
	if flags.AxisForward != "" {
		c.AxisForward = flags.AxisForward
	}
	if flags.AxisUp != "" {
		c.AxisUp = flags.AxisUp
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	setBool(&c.ExportIDs, flags.ExportIDs)
	setBool(&c.SplitFiles, flags.SplitFiles)
	setBool(&c.UseSelection, flags.UseSelection)
	setBool(&c.Preview, flags.Preview)
	setBool(&c.Manifest, flags.Manifest)
	setBool(&c.Debug, flags.Debug)
	if flags.KeepBackground != nil {
		ignore := !*flags.KeepBackground
		c.IgnoreBackground = &ignore
	}

	if c.MitsubaDir == "" {
		c.MitsubaDir = os.Getenv(EnvMitsubaDir)
	}

	// Output defaults to the scene name next to the scene document.
	if c.Output == "" && c.Scene != "" {
		base := filepath.Base(c.Scene)
		c.Output = filepath.Join(filepath.Dir(c.Scene), strings.TrimSuffix(base, filepath.Ext(base))+".xml")
	}

	if c.AxisForward == "" {
		c.AxisForward = mathutil.DefaultAxisForward
	}
	if c.AxisUp == "" {
		c.AxisUp = mathutil.DefaultAxisUp
	}
	if c.IgnoreBackground == nil {
		ignore := true
		c.IgnoreBackground = &ignore
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

var validate = validator.New()

// Validate checks the settings this package owns. Export options are
// checked by export.Config.Validate.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Export returns the per-run export configuration.
func (c Config) Export() export.Config {
	ignore := true
	if c.IgnoreBackground != nil {
		ignore = *c.IgnoreBackground
	}
	return export.Config{
		AxisForward:      c.AxisForward,
		AxisUp:           c.AxisUp,
		ExportIDs:        c.ExportIDs,
		IgnoreBackground: ignore,
		SplitFiles:       c.SplitFiles,
		UseSelection:     c.UseSelection,
		Path:             c.Output,
		Workers:          c.Workers,
		TextureMaxSize:   c.TextureMaxSize,
		Preview:          c.Preview,
		PreviewSize:      c.PreviewSize,
		Supersample:      c.Supersample,
		Manifest:         c.Manifest,
	}
}
