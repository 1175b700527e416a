package scene

import "fmt"

// WalkOptions selects which part of the scene is walked.
type WalkOptions struct {
	UseSelection     bool
	IgnoreBackground bool
}

// Walker lazily enumerates the entities of a scene in declaration order.
// It is not restartable: once Next returns false it keeps returning false.
type Walker struct {
	s      *Scene
	opts   WalkOptions
	camera *Object

	next      int
	pending   []Entity
	worldDone bool
}

// NewWalker checks the scene can be walked and returns a walker positioned
// before the first entity.
func NewWalker(s *Scene, opts WalkOptions) (*Walker, error) {
	if s == nil {
		return nil, readErr(nil, "no scene")
	}
	if !s.Evaluated {
		return nil, readErr(s, "scene has not been evaluated")
	}
	if err := s.check(); err != nil {
		return nil, err
	}

	w := &Walker{s: s, opts: opts}
	w.camera = s.activeCamera()
	return w, nil
}

// Next returns the next entity, or false once the walk is exhausted.
func (w *Walker) Next() (Entity, bool) {
	for len(w.pending) == 0 {
		if w.next < len(w.s.Objects) {
			o := w.s.Objects[w.next]
			w.next++
			if w.include(o) {
				w.pending = w.expand(o)
			}
			continue
		}
		if !w.worldDone {
			w.worldDone = true
			if e, ok := w.world(); ok {
				return e, true
			}
			continue
		}
		return Entity{}, false
	}

	e := w.pending[0]
	w.pending = w.pending[1:]
	return e, true
}

// Collect drains the walker into a slice.
func (w *Walker) Collect() []Entity {
	var out []Entity
	for e, ok := w.Next(); ok; e, ok = w.Next() {
		out = append(out, e)
	}
	return out
}

func (w *Walker) include(o *Object) bool {
	if !o.Visible {
		return false
	}
	if w.opts.UseSelection && !o.Selected {
		return false
	}
	if o.Type == ObjectCamera && o != w.camera {
		return false
	}
	return true
}

func (w *Walker) expand(o *Object) []Entity {
	base := Entity{ID: o.ID, Name: o.Name, Transform: o.MatrixWorld}

	switch o.Type {
	case ObjectMesh:
		mesh, _ := w.s.Mesh(o.MeshID)
		var out []Entity
		for _, id := range o.Materials {
			if id == "" {
				continue
			}
			m, _ := w.s.Material(id)
			out = append(out, Entity{Kind: KindMaterial, ID: m.ID, Name: m.Name, Material: m})
		}
		base.Kind = KindMesh
		base.Mesh = mesh
		base.Materials = o.Materials
		return append(out, base)
	case ObjectLight:
		base.Kind = KindLight
		base.Light = o.Light
	case ObjectCamera:
		base.Kind = KindCamera
		base.Camera = o.Camera
		base.Render = w.s.Render
	default:
		base.Kind = KindUnsupported
		base.HostType = string(o.Type)
	}
	return []Entity{base}
}

func (w *Walker) world() (Entity, bool) {
	world := w.s.World
	if world.IsDefault() && w.opts.IgnoreBackground {
		return Entity{}, false
	}
	if world == nil {
		world = &World{Color: DefaultWorldColor, Strength: 1, Default: true}
	}
	return Entity{Kind: KindWorld, ID: WorldID, Name: "World", World: world}, true
}

func (s *Scene) activeCamera() *Object {
	var first *Object
	for _, o := range s.Objects {
		if o.Type != ObjectCamera {
			continue
		}
		if s.ActiveCamera != "" && o.ID == s.ActiveCamera {
			return o
		}
		if first == nil {
			first = o
		}
	}
	if s.ActiveCamera != "" {
		return nil
	}
	return first
}

// check verifies every reference inside the scene resolves.
func (s *Scene) check() error {
	seen := make(map[string]bool, len(s.Objects))
	for i, o := range s.Objects {
		if o == nil {
			return readErr(s, "object %d is nil", i)
		}
		if o.ID == "" {
			return readErr(s, "object %d (%s) has no id", i, o.Name)
		}
		if seen[o.ID] {
			return readErr(s, "duplicate object id %q", o.ID)
		}
		seen[o.ID] = true
		if !o.MatrixWorld.IsFinite() {
			return readErr(s, "object %q has a non-finite transform", o.ID)
		}

		switch o.Type {
		case ObjectMesh:
			mesh, ok := s.Mesh(o.MeshID)
			if !ok || mesh == nil {
				return readErr(s, "object %q references unknown mesh %q", o.ID, o.MeshID)
			}
			if err := mesh.checkFaces(); err != nil {
				return &ReadError{Scene: s.Name, Reason: fmt.Sprintf("mesh %q", mesh.ID), Err: err}
			}
			for _, id := range o.Materials {
				if id == "" {
					continue
				}
				if _, ok := s.Material(id); !ok {
					return readErr(s, "object %q references unknown material %q", o.ID, id)
				}
			}
		case ObjectLight:
			if o.Light == nil {
				return readErr(s, "light %q has no light data", o.ID)
			}
		case ObjectCamera:
			if o.Camera == nil {
				return readErr(s, "camera %q has no camera data", o.ID)
			}
		}
	}
	if s.ActiveCamera != "" {
		if cam := s.activeCamera(); cam == nil {
			return readErr(s, "active camera %q not found", s.ActiveCamera)
		}
	}
	return nil
}
