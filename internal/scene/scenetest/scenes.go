// Package scenetest builds small scenes for tests.
package scenetest

import (
	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/scene"
)

// Quad returns a unit square in the XY plane.
func Quad(id string) *scene.MeshData {
	return &scene.MeshData{
		ID:   id,
		Name: id,
		Verts: [][3]float32{
			{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		},
		UVs: [][2]float32{
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
		},
		Faces: []scene.Face{{Indices: []int{0, 1, 2, 3}}},
	}
}

// Translate returns an object transform at (x, y, z).
func Translate(x, y, z float64) mathutil.Mat4 {
	return mathutil.FromMat3Translation(mathutil.Mat3Identity(), mathutil.Vec3{x, y, z})
}

// SharedMaterial returns two mesh objects, each with its own mesh data, both
// using one material, plus a point light and a camera. The world is the
// host default.
func SharedMaterial() *scene.Scene {
	s := scene.New("shared")
	s.AddMaterial(&scene.Material{
		ID:        "mat.wood",
		Name:      "Wood",
		Type:      "diffuse",
		BaseColor: mathutil.Vec3{0.6, 0.4, 0.2},
		IOR:       1.5,
	})
	s.AddMesh(Quad("mesh.a"))
	s.AddMesh(Quad("mesh.b"))
	s.AddObject(&scene.Object{
		ID: "obj.a", Name: "Floor", Type: scene.ObjectMesh, Visible: true,
		MatrixWorld: Translate(0, 0, 0),
		MeshID:      "mesh.a", Materials: []string{"mat.wood"},
	})
	s.AddObject(&scene.Object{
		ID: "obj.b", Name: "Wall", Type: scene.ObjectMesh, Visible: true, Selected: true,
		MatrixWorld: Translate(0, 2, 1),
		MeshID:      "mesh.b", Materials: []string{"mat.wood"},
	})
	s.AddObject(&scene.Object{
		ID: "obj.lamp", Name: "Lamp", Type: scene.ObjectLight, Visible: true,
		MatrixWorld: Translate(1, -1, 3),
		Light: &scene.Light{
			Type: scene.LightPoint, Color: mathutil.Vec3{1, 1, 1}, Energy: 100, Size: 1, SizeY: 1,
		},
	})
	s.AddObject(&scene.Object{
		ID: "obj.cam", Name: "Camera", Type: scene.ObjectCamera, Visible: true,
		MatrixWorld: Translate(0, -6, 1),
		Camera: &scene.Camera{
			Type: scene.CameraPerspective, Angle: mathutil.Deg2Rad(39.6), SensorFit: "auto",
			ClipStart: 0.1, ClipEnd: 100, OrthoScale: 6,
		},
	})
	return s
}

// WithWorld sets a non-default constant background.
func WithWorld(s *scene.Scene) *scene.Scene {
	s.World = &scene.World{Color: mathutil.Vec3{0.2, 0.3, 0.4}, Strength: 2}
	return s
}
