package builder

import (
	"math"

	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/scene"
)

func (b *Builder) addLight(e scene.Entity) *UnsupportedEntityError {
	l := e.Light
	power := l.Color.Scale(l.Energy)

	switch l.Type {
	case scene.LightPoint:
		n := ir.New(ir.ClassEmitter, "point")
		n.Point("position", b.world(e.Transform).Translation())
		n.RGB("intensity", power.Scale(1/(4*math.Pi)))
		b.addEmitter(n, e)
	case scene.LightSpot:
		cutoff := mathutil.Rad2Deg(l.SpotSize / 2)
		n := ir.New(ir.ClassEmitter, "spot")
		n.Transform("to_world", mathutil.Mat4Mul(b.world(e.Transform), mathutil.CameraFlip))
		n.RGB("intensity", power.Scale(1/(4*math.Pi)))
		n.Float("cutoff_angle", cutoff)
		n.Float("beam_width", cutoff*(1-l.SpotBlend))
		b.addEmitter(n, e)
	case scene.LightSun:
		dir := b.world(e.Transform).MulDir(mathutil.Vec3{0, 0, -1}).Normalize()
		n := ir.New(ir.ClassEmitter, "directional")
		n.Vector("direction", dir)
		n.RGB("irradiance", power)
		b.addEmitter(n, e)
	case scene.LightArea:
		sx, sy := l.Size, l.SizeY
		if l.Shape == "square" || l.Shape == "disk" || sy <= 0 {
			sy = sx
		}
		area := sx * sy
		if area <= 0 {
			return unsupported(e, "area light has zero size")
		}
		// The rectangle spans [-1,1]² facing +Z; host area lights face -Z.
		local := mathutil.Mat4Diag(sx/2, sy/2, -1)
		n := ir.New(ir.ClassShape, "rectangle")
		n.ID = b.baseID(e.Name, "emitter")
		n.Key = e.ID
		n.Transform("to_world", mathutil.Mat4Mul(b.world(e.Transform), local))
		n.Child("", ir.New(ir.ClassEmitter, "area").RGB("radiance", power.Scale(1/(math.Pi*area))))
		b.emitters = append(b.emitters, n)
	default:
		return unsupported(e, "light type %q has no mapping", l.Type)
	}
	return nil
}

func (b *Builder) addEmitter(n *ir.Node, e scene.Entity) {
	n.ID = b.baseID(e.Name, "emitter")
	n.Key = e.ID
	b.emitters = append(b.emitters, n)
}
