package scene

import (
	"fmt"
	"sort"

	"mitsuba-export/internal/mathutil"
)

// ObjectType is the host object type ("MESH", "LIGHT", "CAMERA", ...),
// normalized to lowercase.
type ObjectType string

const (
	ObjectMesh   ObjectType = "mesh"
	ObjectLight  ObjectType = "light"
	ObjectCamera ObjectType = "camera"
)

// Scene is an evaluated host scene: every modifier applied, every
// transform resolved to world space.
type Scene struct {
	Name string
	// Dir is the directory relative texture paths are resolved against.
	Dir       string
	Evaluated bool
	Render    RenderSettings
	// World is nil when the host scene has no world; treated as default.
	World *World
	// ActiveCamera is the object ID of the scene camera; empty picks the
	// first camera object.
	ActiveCamera string

	Objects []*Object

	materials     map[string]*Material
	materialOrder []string
	meshes        map[string]*MeshData
}

// New returns an empty, evaluated scene.
func New(name string) *Scene {
	return &Scene{
		Name:      name,
		Evaluated: true,
		Render:    DefaultRenderSettings(),
		materials: make(map[string]*Material),
		meshes:    make(map[string]*MeshData),
	}
}

// AddMaterial registers a material; a later material with the same ID replaces it.
func (s *Scene) AddMaterial(m *Material) {
	if _, ok := s.materials[m.ID]; !ok {
		s.materialOrder = append(s.materialOrder, m.ID)
	}
	s.materials[m.ID] = m
}

// AddMesh registers mesh data shared by any number of objects.
func (s *Scene) AddMesh(m *MeshData) {
	s.meshes[m.ID] = m
}

// AddObject appends an object in declaration order.
func (s *Scene) AddObject(o *Object) {
	s.Objects = append(s.Objects, o)
}

func (s *Scene) Material(id string) (*Material, bool) {
	m, ok := s.materials[id]
	return m, ok
}

func (s *Scene) Mesh(id string) (*MeshData, bool) {
	m, ok := s.meshes[id]
	return m, ok
}

// Materials returns materials in registration order.
func (s *Scene) Materials() []*Material {
	out := make([]*Material, 0, len(s.materialOrder))
	for _, id := range s.materialOrder {
		out = append(out, s.materials[id])
	}
	return out
}

// RenderSettings holds the output resolution and sampling budget.
type RenderSettings struct {
	ResolutionX int
	ResolutionY int
	Percentage  int
	Samples     int
	MaxBounces  int
}

func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		ResolutionX: 1920,
		ResolutionY: 1080,
		Percentage:  100,
		Samples:     128,
		MaxBounces:  12,
	}
}

// Size returns the effective film size after the percentage scale.
func (r RenderSettings) Size() (int, int) {
	p := r.Percentage
	if p <= 0 {
		p = 100
	}
	w := r.ResolutionX * p / 100
	h := r.ResolutionY * p / 100
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Object is one entry of the host scene graph.
type Object struct {
	ID          string
	Name        string
	Type        ObjectType
	Visible     bool
	Selected    bool
	MatrixWorld mathutil.Mat4

	// Mesh objects.
	MeshID    string
	Materials []string // material ID per slot, "" for an empty slot

	Light  *Light
	Camera *Camera
}

// Face is a polygon of 3 or more vertex indices.
type Face struct {
	Indices  []int
	Material int // material slot
}

// MeshData is evaluated geometry in object space.
type MeshData struct {
	ID      string
	Name    string
	Verts   [][3]float32
	Normals [][3]float32 // per vertex, optional
	UVs     [][2]float32 // per vertex, optional
	Faces   []Face
}

// UsedSlots returns the material slots referenced by at least one face, ascending.
func (m *MeshData) UsedSlots() []int {
	seen := make(map[int]bool)
	var slots []int
	for _, f := range m.Faces {
		if !seen[f.Material] {
			seen[f.Material] = true
			slots = append(slots, f.Material)
		}
	}
	sort.Ints(slots)
	return slots
}

// checkFaces reports the first face with fewer than 3 corners or a vertex
// index outside Verts.
func (m *MeshData) checkFaces() error {
	for i, f := range m.Faces {
		if len(f.Indices) < 3 {
			return fmt.Errorf("face %d has %d vertices", i, len(f.Indices))
		}
		for _, v := range f.Indices {
			if v < 0 || v >= len(m.Verts) {
				return fmt.Errorf("face %d: vertex index %d out of range", i, v)
			}
		}
	}
	return nil
}

// Material describes a surface in host terms.
type Material struct {
	ID               string
	Name             string
	Type             string // diffuse, plastic, conductor, dielectric
	BaseColor        mathutil.Vec3
	BaseColorTexture string
	Roughness        float64
	IOR              float64
	Emission         mathutil.Vec3
	EmissionStrength float64
	TwoSided         bool
}

// Light types.
const (
	LightPoint = "point"
	LightSpot  = "spot"
	LightSun   = "sun"
	LightArea  = "area"
)

// Light holds host light parameters. Angles are in radians.
type Light struct {
	Type      string
	Color     mathutil.Vec3
	Energy    float64 // watts, or W/m² for sun
	Radius    float64
	SpotSize  float64
	SpotBlend float64
	Size      float64
	SizeY     float64
	Shape     string // square, rectangle
}

// Camera types.
const (
	CameraPerspective  = "perspective"
	CameraOrthographic = "orthographic"
)

// Camera holds host camera parameters. Angle is the field of view in radians.
type Camera struct {
	Type       string
	Angle      float64
	SensorFit  string // auto, horizontal, vertical
	ClipStart  float64
	ClipEnd    float64
	OrthoScale float64
}

// DefaultWorldColor is the host's constant grey background.
var DefaultWorldColor = mathutil.Vec3{0.050876, 0.050876, 0.050876}

// World is the background.
type World struct {
	Color       mathutil.Vec3
	Strength    float64
	Environment string // texture path, empty for a constant colour
	// Default is set by the host when the world was never edited.
	Default bool
}

// IsDefault reports whether the world is the host's untouched default background.
func (w *World) IsDefault() bool {
	if w == nil || w.Default {
		return true
	}
	return w.Environment == "" &&
		w.Strength == 1 &&
		w.Color.ApproxEqual(DefaultWorldColor, 1e-6)
}
