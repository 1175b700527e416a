// Package builder converts scene entities into the plugin graph.
package builder

import (
	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/log"
	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/naming"
	"mitsuba-export/internal/scene"
)

// Directories assets are written to, relative to the scene file.
const (
	MeshDir    = "meshes"
	TextureDir = "textures"
)

// Config is the part of the export configuration the builder reads.
type Config struct {
	// Axis is left-multiplied onto every transform, position and direction.
	Axis      mathutil.Mat4
	ExportIDs bool
	Render    scene.RenderSettings
}

// Builder accumulates the plugin graph of one export. Not safe for
// concurrent use.
type Builder struct {
	cfg   Config
	log   *log.Logger
	ids   *naming.Registry
	files *naming.Registry

	materials map[string]*ir.Node // material ID → bsdf
	skipped   map[string]bool     // material IDs that failed to map
	emission  map[string]mathutil.Vec3
	textures  map[string]*ir.Node // texture reference → bitmap
	images    map[string]ir.Asset
	geometry  map[string]ir.Asset // mesh ID + slot → PLY asset

	integrator *ir.Node
	sensor     *ir.Node
	shapes     []*ir.Node
	emitters   []*ir.Node

	diags []Diagnostic
}

// New returns an empty builder.
func New(cfg Config, logger *log.Logger) *Builder {
	if cfg.Axis == (mathutil.Mat4{}) {
		cfg.Axis = mathutil.Mat4Identity()
	}
	return &Builder{
		cfg:       cfg,
		log:       log.OrNop(logger),
		ids:       naming.NewRegistry(),
		files:     naming.NewRegistry(),
		materials: make(map[string]*ir.Node),
		skipped:   make(map[string]bool),
		emission:  make(map[string]mathutil.Vec3),
		textures:  make(map[string]*ir.Node),
		images:    make(map[string]ir.Asset),
		geometry:  make(map[string]ir.Asset),
	}
}

// Add converts one entity. An *UnsupportedEntityError means the entity was
// skipped; the diagnostic is already recorded and building can continue.
func (b *Builder) Add(e scene.Entity) error {
	var err *UnsupportedEntityError
	switch e.Kind {
	case scene.KindMaterial:
		err = b.addMaterial(e)
	case scene.KindMesh:
		err = b.addMesh(e)
	case scene.KindLight:
		err = b.addLight(e)
	case scene.KindCamera:
		err = b.addCamera(e)
	case scene.KindWorld:
		err = b.addWorld(e)
	default:
		err = unsupported(e, "object type %q has no mapping", e.HostType)
	}
	if err != nil {
		b.record(e, err.Reason)
		return err
	}
	return nil
}

// Scene returns the root node: integrator, sensor, shapes, then emitters.
// Shared bsdfs and textures hang off the shapes as references.
func (b *Builder) Scene() *ir.Node {
	root := ir.New(ir.ClassScene, "")
	root.Child("", b.integratorNode())
	if b.sensor != nil {
		root.Child("", b.sensor)
	}
	for _, s := range b.shapes {
		root.Child("", s)
	}
	for _, e := range b.emitters {
		root.Child("", e)
	}
	return root
}

// Diagnostics returns the non-fatal problems recorded so far, in order.
func (b *Builder) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), b.diags...)
}

func (b *Builder) record(e scene.Entity, msg string) {
	d := Diagnostic{Kind: e.Kind, ID: e.ID, Name: e.Name, Message: msg}
	b.diags = append(b.diags, d)
	b.log.Warnw("entity skipped or degraded", "kind", e.Kind.String(), "id", e.ID, "reason", msg)
}

// baseID names a top-level plugin when IDs are exported.
func (b *Builder) baseID(name, fallback string) string {
	if !b.cfg.ExportIDs {
		return ""
	}
	return b.ids.Named("", name, fallback)
}

// sharedID names a referenced plugin: derived from the name when IDs are
// exported, positional otherwise.
func (b *Builder) sharedID(prefix, name string, class ir.Class) string {
	if !b.cfg.ExportIDs {
		return b.ids.Positional(string(class))
	}
	return b.ids.Named(prefix, name, string(class))
}

// world maps an object-to-world transform into the output frame.
func (b *Builder) world(m mathutil.Mat4) mathutil.Mat4 {
	return mathutil.Mat4Mul(b.cfg.Axis, m)
}

func (b *Builder) integratorNode() *ir.Node {
	if b.integrator != nil {
		return b.integrator
	}
	n := ir.New(ir.ClassIntegrator, "path")
	n.ID = b.baseID("integrator", "integrator")
	depth := b.cfg.Render.MaxBounces + 1
	if b.cfg.Render.MaxBounces <= 0 {
		depth = -1
	}
	n.Int("max_depth", depth)
	b.integrator = n
	return n
}
