package mitsuba

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Scene-format version and variant the exporter targets.
const (
	DefaultVersion = "2.1.0"
	DefaultVariant = "scalar_rgb"
)

// Install is a located renderer build. Locating it never touches the
// process environment; callers that launch the renderer build their own.
type Install struct {
	Dir     string
	Dist    string
	Python  string
	Binary  string
	Version string
	Variant string
}

// Locate checks that dir is a renderer build: <dir>/dist holds the binary
// and <dir>/dist/python the bindings.
func Locate(dir string) (*Install, error) {
	if dir == "" {
		return nil, fmt.Errorf("mitsuba: renderer directory not set")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("mitsuba: locate %s: %w", dir, err)
	}

	inst := &Install{
		Dir:     abs,
		Dist:    filepath.Join(abs, "dist"),
		Python:  filepath.Join(abs, "dist", "python"),
		Version: DefaultVersion,
		Variant: DefaultVariant,
	}
	for _, d := range []string{inst.Dist, inst.Python} {
		fi, err := os.Stat(d)
		if err != nil {
			return nil, fmt.Errorf("mitsuba: locate %s: %w", dir, err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("mitsuba: locate %s: %s is not a directory", dir, d)
		}
	}

	name := "mitsuba"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	inst.Binary = filepath.Join(inst.Dist, name)
	return inst, nil
}
