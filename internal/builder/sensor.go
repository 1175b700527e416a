package builder

import (
	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/scene"
)

func (b *Builder) addCamera(e scene.Entity) *UnsupportedEntityError {
	if b.sensor != nil {
		return unsupported(e, "a sensor was already exported")
	}
	c := e.Camera
	toWorld := mathutil.Mat4Mul(b.world(e.Transform), mathutil.CameraFlip)

	var n *ir.Node
	switch c.Type {
	case scene.CameraPerspective:
		n = ir.New(ir.ClassSensor, "perspective").
			Float("fov", mathutil.Rad2Deg(c.Angle)).
			Str("fov_axis", fovAxis(c.SensorFit)).
			Float("near_clip", c.ClipStart).
			Float("far_clip", c.ClipEnd).
			Transform("to_world", toWorld)
	case scene.CameraOrthographic:
		s := c.OrthoScale / 2
		n = ir.New(ir.ClassSensor, "orthographic").
			Float("near_clip", c.ClipStart).
			Float("far_clip", c.ClipEnd).
			Transform("to_world", mathutil.Mat4Mul(toWorld, mathutil.Mat4Diag(s, s, 1)))
	default:
		return unsupported(e, "camera type %q has no mapping", c.Type)
	}
	n.ID = b.baseID(e.Name, "sensor")
	n.Key = e.ID

	w, h := e.Render.Size()
	samples := e.Render.Samples
	if samples <= 0 {
		samples = scene.DefaultRenderSettings().Samples
	}
	n.Child("", ir.New(ir.ClassFilm, "hdrfilm").Int("width", w).Int("height", h))
	n.Child("", ir.New(ir.ClassSampler, "independent").Int("sample_count", samples))
	b.sensor = n
	return nil
}

// fovAxis maps the host sensor fit onto the renderer's fov_axis: the host
// applies the angle to the larger film side unless told otherwise.
func fovAxis(fit string) string {
	switch fit {
	case "horizontal":
		return "x"
	case "vertical":
		return "y"
	}
	return "larger"
}

func (b *Builder) addWorld(e scene.Entity) *UnsupportedEntityError {
	w := e.World
	var n *ir.Node
	if w.Environment != "" {
		a := b.imageAsset(w.Environment)
		n = ir.New(ir.ClassEmitter, "envmap").
			Str("filename", a.Path).
			Float("scale", w.Strength).
			Transform("to_world", b.world(mathutil.EnvmapFrame))
		n.Asset = a
	} else {
		n = ir.New(ir.ClassEmitter, "constant").RGB("radiance", w.Color.Scale(w.Strength))
	}
	n.ID = b.baseID(e.Name, "world")
	n.Key = e.ID
	b.emitters = append(b.emitters, n)
	return nil
}
