// Package preview renders a quick look of an exported scene from its sensor
// and encodes it as WebP.
package preview

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/HugoSmits86/nativewebp"

	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/postprocess"
	"mitsuba-export/internal/raster"
	"mitsuba-export/internal/texture"
)

// DefaultSize is the longest side of a preview in pixels.
const DefaultSize = 256

// ErrNoSensor is returned for a scene without a camera.
var ErrNoSensor = errors.New("preview: scene has no sensor")

// Options configures Render.
type Options struct {
	// Size is the longest side of the output image.
	Size        int
	Supersample int
	// Textures resolves bitmap sources; nil renders base colours only.
	Textures texture.Resolver
}

// Render draws the shapes of the graph under root through its sensor.
func Render(root *ir.Node, opts Options) (*image.NRGBA, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}

	var sensor *ir.Node
	var meshes []raster.Mesh
	for _, p := range root.Params {
		n := p.Value.Node
		if p.Value.Kind != ir.KindChild {
			continue
		}
		switch n.Class {
		case ir.ClassSensor:
			if sensor == nil {
				sensor = n
			}
		case ir.ClassShape:
			if m, ok := mesh(n, opts.Textures); ok {
				meshes = append(meshes, m)
			}
		}
	}
	if sensor == nil {
		return nil, ErrNoSensor
	}

	cam, fw, fh := camera(sensor)
	w, h := fit(fw, fh, opts.Size)
	img, err := raster.Render(meshes, cam, w*opts.Supersample, h*opts.Supersample)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	if opts.Supersample > 1 {
		img = postprocess.Downsample(img, opts.Supersample)
	}
	return img, nil
}

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	return nil
}

// WriteFile encodes img to path.
func WriteFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func camera(sensor *ir.Node) (raster.Camera, int, int) {
	cam := raster.Camera{
		ToWorld:      transform(sensor, "to_world"),
		Orthographic: sensor.Type == "orthographic",
		FOV:          float(sensor, "fov", 39.6),
		FOVAxis:      str(sensor, "fov_axis", "x"),
		Near:         float(sensor, "near_clip", 0.01),
	}
	w, h := 256, 256
	for _, p := range sensor.Params {
		if p.Value.Kind == ir.KindChild && p.Value.Node.Class == ir.ClassFilm {
			w = integer(p.Value.Node, "width", w)
			h = integer(p.Value.Node, "height", h)
		}
	}
	return cam, w, h
}

// fit scales w×h so the longer side is size.
func fit(w, h, size int) (int, int) {
	if w <= 0 || h <= 0 {
		return size, size
	}
	if w >= h {
		return size, max(1, int(math.Round(float64(h)*float64(size)/float64(w))))
	}
	return max(1, int(math.Round(float64(w)*float64(size)/float64(h)))), size
}

func mesh(shape *ir.Node, textures texture.Resolver) (raster.Mesh, bool) {
	g := shape.Asset.Geometry
	if shape.Asset.Kind != ir.AssetPLY || g == nil {
		return raster.Mesh{}, false
	}
	m := raster.Mesh{
		Positions: g.Positions,
		UVs:       g.UVs,
		Triangles: g.Triangles,
		ToWorld:   transform(shape, "to_world"),
		Color:     [4]uint8{180, 180, 180, 255},
	}

	// An emissive shape shows its radiance.
	for _, p := range shape.Params {
		if p.Value.Kind == ir.KindChild && p.Value.Node.Class == ir.ClassEmitter {
			if v, ok := p.Value.Node.Get("radiance"); ok {
				m.Color = srgb(v.Vec)
				return m, true
			}
		}
	}

	if v, ok := shape.Get("bsdf"); ok && v.Node != nil {
		surface(&m, v.Node, textures)
	}
	return m, true
}

var colourParams = []string{"reflectance", "diffuse_reflectance", "specular_reflectance"}

// surface sets the mesh colour from a bsdf, looking through wrappers such as
// twosided.
func surface(m *raster.Mesh, bsdf *ir.Node, textures texture.Resolver) {
	for _, name := range colourParams {
		v, ok := bsdf.Get(name)
		if !ok {
			continue
		}
		switch v.Kind {
		case ir.KindRGB:
			m.Color = srgb(v.Vec)
		case ir.KindRef, ir.KindChild:
			if textures != nil && v.Node.Asset.Image != "" {
				m.Texture = textures.Resolve(v.Node.Asset.Image)
			}
		}
		return
	}
	for _, p := range bsdf.Params {
		if p.Value.Kind == ir.KindChild && p.Value.Node.Class == ir.ClassBSDF {
			surface(m, p.Value.Node, textures)
			return
		}
	}
	if bsdf.Type == "dielectric" || bsdf.Type == "roughdielectric" {
		m.Color = [4]uint8{220, 230, 235, 255}
	}
}

func srgb(c mathutil.Vec3) [4]uint8 {
	return [4]uint8{raster.EncodeSRGB(c[0]), raster.EncodeSRGB(c[1]), raster.EncodeSRGB(c[2]), 255}
}

func transform(n *ir.Node, name string) mathutil.Mat4 {
	if v, ok := n.Get(name); ok && v.Kind == ir.KindTransform {
		return v.Transform
	}
	return mathutil.Mat4Identity()
}

func float(n *ir.Node, name string, def float64) float64 {
	if v, ok := n.Get(name); ok && v.Kind == ir.KindFloat {
		return v.Float
	}
	return def
}

func integer(n *ir.Node, name string, def int) int {
	if v, ok := n.Get(name); ok && v.Kind == ir.KindInt {
		return v.Int
	}
	return def
}

func str(n *ir.Node, name, def string) string {
	if v, ok := n.Get(name); ok && v.Kind == ir.KindString {
		return v.Str
	}
	return def
}
