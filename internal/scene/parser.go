package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mitsuba-export/internal/mathutil"
)

// docScene matches the JSON dump of an evaluated host scene.
type docScene struct {
	Name      string        `json:"name"`
	Evaluated *bool         `json:"evaluated"`
	Camera    string        `json:"camera"`
	Render    *docRender    `json:"render"`
	World     *docWorld     `json:"world"`
	Materials []docMaterial `json:"materials"`
	Meshes    []docMesh     `json:"meshes"`
	Objects   []docObject   `json:"objects"`
}

type docRender struct {
	ResolutionX int `json:"resolution_x"`
	ResolutionY int `json:"resolution_y"`
	Percentage  int `json:"resolution_percentage"`
	Samples     int `json:"samples"`
	MaxBounces  int `json:"max_bounces"`
}

type docWorld struct {
	Color       *[3]float64 `json:"color"`
	Strength    *float64    `json:"strength"`
	Environment string      `json:"environment"`
	Default     bool        `json:"default"`
}

type docMaterial struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	BaseColor        *[3]float64 `json:"base_color"`
	BaseColorTexture string      `json:"base_color_texture"`
	Roughness        float64     `json:"roughness"`
	IOR              float64     `json:"ior"`
	Emission         [3]float64  `json:"emission"`
	EmissionStrength float64     `json:"emission_strength"`
	TwoSided         bool        `json:"two_sided"`
}

type docMesh struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Vertices      [][3]float32 `json:"vertices"`
	Normals       [][3]float32 `json:"normals"`
	UVs           [][2]float32 `json:"uvs"`
	Faces         [][]int      `json:"faces"`
	FaceMaterials []int        `json:"face_materials"`
}

type docObject struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Visible   *bool    `json:"visible"`
	Selected  bool     `json:"selected"`
	Mesh      string   `json:"mesh"`
	Materials []string `json:"materials"`

	MatrixWorld        *[16]float64 `json:"matrix_world"`
	Location           [3]float64   `json:"location"`
	RotationEuler      *[3]float64  `json:"rotation_euler"`
	RotationQuaternion *[4]float64  `json:"rotation_quaternion"`
	Scale              *[3]float64  `json:"scale"`

	Light  *docLight  `json:"light"`
	Camera *docCamera `json:"camera"`
}

type docLight struct {
	Type      string      `json:"type"`
	Color     *[3]float64 `json:"color"`
	Energy    float64     `json:"energy"`
	Radius    float64     `json:"radius"`
	SpotSize  float64     `json:"spot_size"`
	SpotBlend float64     `json:"spot_blend"`
	Size      float64     `json:"size"`
	SizeY     float64     `json:"size_y"`
	Shape     string      `json:"shape"`
}

type docCamera struct {
	Type       string  `json:"type"`
	Angle      float64 `json:"angle"`
	SensorFit  string  `json:"sensor_fit"`
	ClipStart  float64 `json:"clip_start"`
	ClipEnd    float64 `json:"clip_end"`
	OrthoScale float64 `json:"ortho_scale"`
}

// Load reads a scene document from disk. Relative texture paths resolve
// against the document's directory.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Scene: path, Reason: "open", Err: err}
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, err
	}
	s.Dir = filepath.Dir(path)
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes a scene document. The result is not checked for dangling
// references; NewWalker does that.
func Parse(r io.Reader) (*Scene, error) {
	var doc docScene
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &ReadError{Scene: "<document>", Reason: "decode", Err: err}
	}

	s := New(doc.Name)
	if doc.Evaluated != nil {
		s.Evaluated = *doc.Evaluated
	}
	s.ActiveCamera = doc.Camera
	if doc.Render != nil {
		applyRender(&s.Render, doc.Render)
	}
	if doc.World != nil {
		s.World = convertWorld(doc.World)
	}

	for _, m := range doc.Materials {
		if m.ID == "" {
			return nil, readErr(s, "material %q has no id", m.Name)
		}
		s.AddMaterial(convertMaterial(m))
	}

	for _, m := range doc.Meshes {
		mesh, err := convertMesh(m)
		if err != nil {
			return nil, &ReadError{Scene: s.Name, Reason: "mesh " + m.ID, Err: err}
		}
		s.AddMesh(mesh)
	}

	for i, o := range doc.Objects {
		obj, err := convertObject(o)
		if err != nil {
			return nil, &ReadError{Scene: s.Name, Reason: fmt.Sprintf("object %d", i), Err: err}
		}
		s.AddObject(obj)
	}

	return s, nil
}

func applyRender(dst *RenderSettings, r *docRender) {
	if r.ResolutionX > 0 {
		dst.ResolutionX = r.ResolutionX
	}
	if r.ResolutionY > 0 {
		dst.ResolutionY = r.ResolutionY
	}
	if r.Percentage > 0 {
		dst.Percentage = r.Percentage
	}
	if r.Samples > 0 {
		dst.Samples = r.Samples
	}
	if r.MaxBounces > 0 {
		dst.MaxBounces = r.MaxBounces
	}
}

func convertWorld(w *docWorld) *World {
	out := &World{
		Color:       DefaultWorldColor,
		Strength:    1,
		Environment: w.Environment,
		Default:     w.Default,
	}
	if w.Color != nil {
		out.Color = mathutil.Vec3(*w.Color)
	}
	if w.Strength != nil {
		out.Strength = *w.Strength
	}
	return out
}

func convertMaterial(m docMaterial) *Material {
	out := &Material{
		ID:               m.ID,
		Name:             m.Name,
		Type:             strings.ToLower(m.Type),
		BaseColor:        mathutil.Vec3{0.8, 0.8, 0.8},
		BaseColorTexture: m.BaseColorTexture,
		Roughness:        m.Roughness,
		IOR:              m.IOR,
		Emission:         mathutil.Vec3(m.Emission),
		EmissionStrength: m.EmissionStrength,
		TwoSided:         m.TwoSided,
	}
	if out.Name == "" {
		out.Name = m.ID
	}
	if out.Type == "" {
		out.Type = "diffuse"
	}
	if m.BaseColor != nil {
		out.BaseColor = mathutil.Vec3(*m.BaseColor)
	}
	if out.IOR == 0 {
		out.IOR = 1.5
	}
	return out
}

func convertMesh(m docMesh) (*MeshData, error) {
	if m.ID == "" {
		return nil, fmt.Errorf("mesh %q has no id", m.Name)
	}
	if len(m.FaceMaterials) != 0 && len(m.FaceMaterials) != len(m.Faces) {
		return nil, fmt.Errorf("%d face materials for %d faces", len(m.FaceMaterials), len(m.Faces))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return nil, fmt.Errorf("%d normals for %d vertices", len(m.Normals), len(m.Vertices))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Vertices) {
		return nil, fmt.Errorf("%d uvs for %d vertices", len(m.UVs), len(m.Vertices))
	}

	out := &MeshData{
		ID:      m.ID,
		Name:    m.Name,
		Verts:   m.Vertices,
		Normals: m.Normals,
		UVs:     m.UVs,
		Faces:   make([]Face, 0, len(m.Faces)),
	}
	if out.Name == "" {
		out.Name = m.ID
	}
	for i, idx := range m.Faces {
		f := Face{Indices: idx}
		if len(m.FaceMaterials) > 0 {
			f.Material = m.FaceMaterials[i]
		}
		out.Faces = append(out.Faces, f)
	}
	if err := out.checkFaces(); err != nil {
		return nil, err
	}
	return out, nil
}

func convertObject(o docObject) (*Object, error) {
	obj := &Object{
		ID:        o.ID,
		Name:      o.Name,
		Type:      ObjectType(strings.ToLower(o.Type)),
		Visible:   o.Visible == nil || *o.Visible,
		Selected:  o.Selected,
		MeshID:    o.Mesh,
		Materials: o.Materials,
	}
	if obj.Name == "" {
		obj.Name = obj.ID
	}

	if o.MatrixWorld != nil {
		obj.MatrixWorld = mathutil.Mat4(*o.MatrixWorld)
	} else {
		rot := mathutil.Mat3Identity()
		switch {
		case o.RotationQuaternion != nil:
			rot = mathutil.QuatToMat3(mathutil.QuatFromWXYZ(*o.RotationQuaternion).Normalize())
		case o.RotationEuler != nil:
			e := *o.RotationEuler
			rot = mathutil.QuatToMat3(mathutil.EulerToQuat(e[0], e[1], e[2]))
		}
		scale := mathutil.Vec3{1, 1, 1}
		if o.Scale != nil {
			scale = mathutil.Vec3(*o.Scale)
		}
		obj.MatrixWorld = mathutil.ComposeTRS(mathutil.Vec3(o.Location), rot, scale)
	}

	switch obj.Type {
	case ObjectLight:
		if o.Light == nil {
			return nil, fmt.Errorf("light %q has no light block", o.ID)
		}
		obj.Light = convertLight(o.Light)
	case ObjectCamera:
		if o.Camera == nil {
			return nil, fmt.Errorf("camera %q has no camera block", o.ID)
		}
		obj.Camera = convertCamera(o.Camera)
	}
	return obj, nil
}

func convertLight(l *docLight) *Light {
	out := &Light{
		Type:      strings.ToLower(l.Type),
		Color:     mathutil.Vec3{1, 1, 1},
		Energy:    l.Energy,
		Radius:    l.Radius,
		SpotSize:  l.SpotSize,
		SpotBlend: l.SpotBlend,
		Size:      l.Size,
		SizeY:     l.SizeY,
		Shape:     strings.ToLower(l.Shape),
	}
	if l.Color != nil {
		out.Color = mathutil.Vec3(*l.Color)
	}
	if out.Size == 0 {
		out.Size = 1
	}
	if out.SizeY == 0 {
		out.SizeY = out.Size
	}
	return out
}

func convertCamera(c *docCamera) *Camera {
	out := &Camera{
		Type:       strings.ToLower(c.Type),
		Angle:      c.Angle,
		SensorFit:  strings.ToLower(c.SensorFit),
		ClipStart:  c.ClipStart,
		ClipEnd:    c.ClipEnd,
		OrthoScale: c.OrthoScale,
	}
	if out.Type == "" || out.Type == "persp" {
		out.Type = CameraPerspective
	}
	if out.Type == "ortho" {
		out.Type = CameraOrthographic
	}
	if out.Angle == 0 {
		out.Angle = mathutil.Deg2Rad(39.5978)
	}
	if out.SensorFit == "" {
		out.SensorFit = "auto"
	}
	if out.ClipStart == 0 {
		out.ClipStart = 0.1
	}
	if out.ClipEnd == 0 {
		out.ClipEnd = 100
	}
	if out.OrthoScale == 0 {
		out.OrthoScale = 6
	}
	return out
}
