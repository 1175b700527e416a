package scene

import "mitsuba-export/internal/mathutil"

// Kind tags the payload of an Entity.
type Kind int

const (
	KindMesh Kind = iota
	KindMaterial
	KindLight
	KindCamera
	KindWorld
	// KindUnsupported carries host objects with no export mapping.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindMaterial:
		return "material"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	case KindWorld:
		return "world"
	case KindUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// WorldID is the stable identifier of the world entity.
const WorldID = "world"

// Entity is one exportable record produced by the Walker. Exactly one
// payload pointer matching Kind is set. Entities are read-only.
type Entity struct {
	Kind Kind
	// ID is the resource identity used for deduplication: the material ID
	// for materials, the object ID for objects, WorldID for the world.
	ID        string
	Name      string
	Transform mathutil.Mat4

	// KindMesh: geometry plus the material ID of each slot.
	Mesh      *MeshData
	Materials []string

	Material *Material
	Light    *Light
	Camera   *Camera
	World    *World

	// KindCamera: film settings.
	Render RenderSettings

	// KindUnsupported: host object type.
	HostType string
}
