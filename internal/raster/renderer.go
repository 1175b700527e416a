package raster

import (
	"fmt"
	"image"
	"math"

	"mitsuba-export/internal/mathutil"
)

// Camera describes the view in the renderer's sensor convention: the
// camera looks down its local +Z with +Y up, and local +X points to the
// left of the image.
type Camera struct {
	ToWorld      mathutil.Mat4
	Orthographic bool
	// FOV is the perspective field of view in degrees along FOVAxis
	// ("x", "y", "larger" or "smaller").
	FOV     float64
	FOVAxis string
	Near    float64
}

// Mesh is one triangle mesh in object space.
type Mesh struct {
	Positions [][3]float32
	UVs       [][2]float32
	Triangles [][3]uint32
	ToWorld   mathutil.Mat4
	// Color is the sRGB base colour, used when Texture is nil.
	Color   [4]uint8
	Texture *image.NRGBA
}

// Render draws meshes as seen from cam into a w×h image. Pixels not covered
// by any mesh stay transparent. Triangles crossing the near plane are
// dropped rather than clipped.
func Render(meshes []Mesh, cam Camera, w, h int) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", w, h)
	}
	view, ok := cam.ToWorld.InverseAffine()
	if !ok {
		return nil, fmt.Errorf("raster: camera transform is singular")
	}
	tx, ty := extent(cam, w, h)
	if tx <= 0 || ty <= 0 {
		return nil, fmt.Errorf("raster: invalid field of view %g", cam.FOV)
	}

	fb := NewFrameBuffer(w, h)
	lc := DefaultLightConfig()

	project := func(p mathutil.Vec3) Vertex {
		nx, ny, key := -p[0]/tx, p[1]/ty, -p[2]
		if !cam.Orthographic {
			nx /= p[2]
			ny /= p[2]
			key = 1 / p[2]
		}
		return Vertex{
			X: (nx + 1) * 0.5 * float64(w),
			Y: (1 - ny) * 0.5 * float64(h),
			Z: key,
		}
	}

	for _, mesh := range meshes {
		if len(mesh.Positions) == 0 {
			continue
		}
		toCam := mathutil.Mat4Mul(view, mesh.ToWorld)

		cs := make([]mathutil.Vec3, len(mesh.Positions))
		for i, p := range mesh.Positions {
			cs[i] = toCam.MulPoint(mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
		}
		hasUV := mesh.Texture != nil && len(mesh.UVs) == len(mesh.Positions)
		var tex *image.NRGBA
		if hasUV {
			tex = mesh.Texture
		}

		for _, tri := range mesh.Triangles {
			var c [3]mathutil.Vec3
			var v [3]Vertex
			visible := true
			for k, idx := range tri {
				if int(idx) >= len(cs) {
					visible = false
					break
				}
				c[k] = cs[idx]
				if c[k][2] < cam.Near {
					visible = false
					break
				}
				v[k] = project(c[k])
				if hasUV {
					v[k].U, v[k].V = float64(mesh.UVs[idx][0]), float64(mesh.UVs[idx][1])
				}
			}
			if !visible {
				continue
			}

			// Face normal for flat shading, turned towards the camera.
			n := c[1].Sub(c[0]).Cross(c[2].Sub(c[0]))
			if n.Len() < 1e-12 {
				continue
			}
			n = n.Normalize()
			if n.Dot(c[0]) > 0 {
				n = n.Neg()
			}
			RasterizeTriangle(fb, v, tex, mesh.Color, lc.ComputeShade(n), &lc)
		}
	}
	return fb.Image(), nil
}

// extent returns the half-size of the view at unit depth (perspective) or
// in camera units (orthographic) along x and y.
func extent(cam Camera, w, h int) (float64, float64) {
	aspect := float64(w) / float64(h)
	half := 1.0
	if !cam.Orthographic {
		half = math.Tan(mathutil.Deg2Rad(cam.FOV) / 2)
	}

	axis := cam.FOVAxis
	if cam.Orthographic {
		axis = "larger"
	}
	switch axis {
	case "larger":
		axis = "x"
		if h > w {
			axis = "y"
		}
	case "smaller":
		axis = "y"
		if h > w {
			axis = "x"
		}
	}
	if axis == "y" {
		return half * aspect, half
	}
	return half, half / aspect
}
