package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"mitsuba-export/internal/mathutil"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("axis", validateAxis)
}

func validateAxis(fl validator.FieldLevel) bool {
	_, err := mathutil.ParseAxis(fl.Field().String())
	return err == nil
}

// Config is the per-run export configuration. It is passed by value and
// never modified by a run.
type Config struct {
	AxisForward string `validate:"required,axis"`
	AxisUp      string `validate:"required,axis"`

	ExportIDs        bool
	IgnoreBackground bool
	SplitFiles       bool
	UseSelection     bool

	// Path is the root scene file; it must end in .xml.
	Path string `validate:"required"`

	Workers        int `validate:"gte=0,lte=256"`
	TextureMaxSize int `validate:"gte=0"`

	Preview     bool
	PreviewSize int `validate:"gte=0,lte=8192"`
	Supersample int `validate:"gte=0,lte=8"`
	Manifest    bool
}

// DefaultConfig returns the exporter defaults for path.
func DefaultConfig(path string) Config {
	return Config{
		AxisForward:      mathutil.DefaultAxisForward,
		AxisUp:           mathutil.DefaultAxisUp,
		IgnoreBackground: true,
		Path:             path,
		PreviewSize:      256,
		Supersample:      2,
	}
}

// Axis returns the axis-remap matrix.
func (c Config) Axis() (mathutil.Mat4, error) {
	return mathutil.AxisConversion(c.AxisForward, c.AxisUp)
}

// Validate checks the configuration without writing anything. The
// destination directory must already exist and accept new files.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{Field: fe.Field(), Value: fe.Value(), Reason: "failed " + fe.Tag() + " " + fe.Param()}
		}
		return &ConfigError{Reason: err.Error()}
	}
	if _, err := c.Axis(); err != nil {
		return &ConfigError{Field: "AxisUp", Value: c.AxisUp, Reason: "must differ from the forward axis " + c.AxisForward}
	}

	if !strings.EqualFold(filepath.Ext(c.Path), ".xml") {
		return &ConfigError{Field: "Path", Value: c.Path, Reason: "must end in .xml"}
	}
	if fi, err := os.Stat(c.Path); err == nil && fi.IsDir() {
		reason := "is a directory"
		if c.SplitFiles {
			reason = "is a directory; split export needs a file path for the root scene"
		}
		return &ConfigError{Field: "Path", Value: c.Path, Reason: reason}
	}

	dir := filepath.Dir(c.Path)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return &ConfigError{Field: "Path", Value: c.Path, Reason: "destination directory does not exist"}
	}
	if err := probeWritable(dir); err != nil {
		return &ConfigError{Field: "Path", Value: c.Path, Reason: "destination directory is not writable: " + err.Error()}
	}
	return nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".mitsuba-export-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
