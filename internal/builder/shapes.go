package builder

import (
	"fmt"
	"path"

	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/scene"
)

func (b *Builder) addMesh(e scene.Entity) *UnsupportedEntityError {
	mesh := e.Mesh
	slots := mesh.UsedSlots()
	if len(slots) == 0 {
		return unsupported(e, "mesh %q has no faces", mesh.Name)
	}

	for _, slot := range slots {
		asset := b.plyAsset(mesh, slot, len(slots) > 1)

		name := e.Name
		matID := ""
		if slot >= 0 && slot < len(e.Materials) {
			matID = e.Materials[slot]
		}
		if len(slots) > 1 {
			name = fmt.Sprintf("%s-%d", e.Name, slot)
		}

		shape := ir.New(ir.ClassShape, "ply").Str("filename", asset.Path)
		shape.ID = b.baseID(name, "shape")
		shape.Key = e.ID
		shape.Asset = asset
		shape.Transform("to_world", b.world(e.Transform))

		switch {
		case matID == "":
			// Renderer default bsdf.
		case b.materials[matID] != nil:
			shape.Ref("bsdf", b.materials[matID])
		default:
			b.record(e, fmt.Sprintf("material %q was not exported, using the default bsdf", matID))
		}

		if radiance, ok := b.emission[matID]; ok {
			shape.Child("", ir.New(ir.ClassEmitter, "area").RGB("radiance", radiance))
		}
		b.shapes = append(b.shapes, shape)
	}
	return nil
}

// plyAsset returns the geometry file of one material slot of a mesh,
// created once per mesh data so instanced objects share it.
func (b *Builder) plyAsset(mesh *scene.MeshData, slot int, multi bool) ir.Asset {
	key := fmt.Sprintf("%s#%d", mesh.ID, slot)
	if a, ok := b.geometry[key]; ok {
		return a
	}
	name := mesh.Name
	if multi {
		name = fmt.Sprintf("%s-%d", mesh.Name, slot)
	}
	a := ir.Asset{
		Kind:     ir.AssetPLY,
		Path:     path.Join(MeshDir, b.files.Named("", name, "mesh")+".ply"),
		Geometry: Triangulate(mesh, slot),
	}
	b.geometry[key] = a
	return a
}

// Triangulate extracts the faces of one material slot as a fan-triangulated
// mesh with compacted vertex indices. Per-vertex normals and UVs follow
// their vertices.
func Triangulate(mesh *scene.MeshData, slot int) *ir.Geometry {
	g := &ir.Geometry{}
	remap := make(map[int]uint32)
	vertex := func(i int) uint32 {
		if v, ok := remap[i]; ok {
			return v
		}
		v := uint32(len(g.Positions))
		remap[i] = v
		g.Positions = append(g.Positions, mesh.Verts[i])
		if len(mesh.Normals) == len(mesh.Verts) {
			g.Normals = append(g.Normals, mesh.Normals[i])
		}
		if len(mesh.UVs) == len(mesh.Verts) {
			g.UVs = append(g.UVs, mesh.UVs[i])
		}
		return v
	}

	for _, f := range mesh.Faces {
		if f.Material != slot {
			continue
		}
		for k := 1; k+1 < len(f.Indices); k++ {
			g.Triangles = append(g.Triangles, [3]uint32{
				vertex(f.Indices[0]),
				vertex(f.Indices[k]),
				vertex(f.Indices[k+1]),
			})
		}
	}
	return g
}
