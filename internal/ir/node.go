// Package ir is the renderer-agnostic plugin graph built from a scene and
// consumed by the serializer.
//
// A Node is a plugin (class + type) with an ordered parameter list. A
// parameter value is a scalar, a colour, a point or vector, a transform, a
// nested child plugin owned by the parent, or a reference to a shared node.
// Shared nodes may be referenced from any number of parents; the graph must
// stay acyclic.
package ir

import "mitsuba-export/internal/mathutil"

// Class is the plugin category.
type Class string

const (
	ClassScene      Class = "scene"
	ClassIntegrator Class = "integrator"
	ClassSensor     Class = "sensor"
	ClassFilm       Class = "film"
	ClassSampler    Class = "sampler"
	ClassBSDF       Class = "bsdf"
	ClassTexture    Class = "texture"
	ClassShape      Class = "shape"
	ClassEmitter    Class = "emitter"
)

// Node is one plugin.
type Node struct {
	Class Class
	Type  string
	// ID is the identifier written to the output. Empty means anonymous;
	// nodes that are referenced always have one.
	ID string
	// Key is the source resource identity the node was built from.
	Key    string
	Params []Param
	// Asset is a file the serializer must produce alongside the markup.
	Asset Asset
}

// New returns a node with no parameters.
func New(class Class, typ string) *Node {
	return &Node{Class: class, Type: typ}
}

// Param is a named value.
type Param struct {
	Name  string
	Value Value
}

// Kind tags a Value.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindString
	KindRGB
	KindPoint
	KindVector
	KindTransform
	KindChild
	KindRef
)

// Value is a tagged parameter value. Only the field matching Kind is set.
type Value struct {
	Kind      Kind
	Float     float64
	Int       int
	Bool      bool
	Str       string
	Vec       mathutil.Vec3
	Transform mathutil.Mat4
	Node      *Node
}

func (n *Node) add(name string, v Value) *Node {
	n.Params = append(n.Params, Param{Name: name, Value: v})
	return n
}

// Float appends a float parameter and returns n for chaining.
func (n *Node) Float(name string, f float64) *Node {
	return n.add(name, Value{Kind: KindFloat, Float: f})
}

// Int appends an integer parameter.
func (n *Node) Int(name string, i int) *Node {
	return n.add(name, Value{Kind: KindInt, Int: i})
}

// Bool appends a boolean parameter.
func (n *Node) Bool(name string, b bool) *Node {
	return n.add(name, Value{Kind: KindBool, Bool: b})
}

// Str appends a string parameter.
func (n *Node) Str(name, s string) *Node {
	return n.add(name, Value{Kind: KindString, Str: s})
}

// RGB appends a linear RGB colour.
func (n *Node) RGB(name string, c mathutil.Vec3) *Node {
	return n.add(name, Value{Kind: KindRGB, Vec: c})
}

// Point appends a position.
func (n *Node) Point(name string, p mathutil.Vec3) *Node {
	return n.add(name, Value{Kind: KindPoint, Vec: p})
}

// Vector appends a direction.
func (n *Node) Vector(name string, v mathutil.Vec3) *Node {
	return n.add(name, Value{Kind: KindVector, Vec: v})
}

// Transform appends a 4×4 row-major matrix, usually "to_world".
func (n *Node) Transform(name string, m mathutil.Mat4) *Node {
	return n.add(name, Value{Kind: KindTransform, Transform: m})
}

// Child nests a plugin owned by n. The name may be empty.
func (n *Node) Child(name string, c *Node) *Node {
	return n.add(name, Value{Kind: KindChild, Node: c})
}

// Ref points at a shared node defined elsewhere in the graph.
func (n *Node) Ref(name string, target *Node) *Node {
	return n.add(name, Value{Kind: KindRef, Node: target})
}

// Refs returns the shared nodes n references directly, in parameter order,
// including references made by nested children.
func (n *Node) Refs() []*Node {
	var out []*Node
	for _, p := range n.Params {
		switch p.Value.Kind {
		case KindRef:
			out = append(out, p.Value.Node)
		case KindChild:
			out = append(out, p.Value.Node.Refs()...)
		}
	}
	return out
}

// Get returns the first parameter with the given name.
func (n *Node) Get(name string) (Value, bool) {
	for _, p := range n.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// AssetKind selects the file format of an Asset.
type AssetKind int

const (
	AssetNone AssetKind = iota
	AssetPLY
	AssetTexture
)

// Asset is an auxiliary file referenced by a "filename" parameter.
type Asset struct {
	Kind AssetKind
	// Path is relative to the scene file, forward slashes.
	Path string
	// Source is the geometry or source image, by kind.
	Geometry *Geometry
	Image    string
}

// Geometry is a triangle mesh ready for PLY output.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Triangles [][3]uint32
}
