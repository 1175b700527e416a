package builder

import (
	"path"
	"strings"

	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/scene"
	"mitsuba-export/internal/texture"
)

func (b *Builder) addMaterial(e scene.Entity) *UnsupportedEntityError {
	m := e.Material
	if _, ok := b.materials[m.ID]; ok {
		return nil
	}
	if b.skipped[m.ID] {
		// Reported once, at first use.
		return nil
	}

	inner, err := b.bsdf(e, m)
	if err != nil {
		b.skipped[m.ID] = true
		return err
	}

	node := inner
	if m.TwoSided && !transmissive(m.Type) {
		node = ir.New(ir.ClassBSDF, "twosided").Child("", inner)
	}
	node.ID = b.sharedID("mat-", m.Name, ir.ClassBSDF)
	node.Key = m.ID
	b.materials[m.ID] = node

	if m.EmissionStrength > 0 && m.Emission != (mathutil.Vec3{}) {
		b.emission[m.ID] = m.Emission.Scale(m.EmissionStrength)
	}
	return nil
}

func transmissive(typ string) bool {
	return typ == "dielectric" || typ == "glass"
}

// alpha converts perceptual roughness into a microfacet width.
func alpha(roughness float64) float64 {
	return roughness * roughness
}

func (b *Builder) bsdf(e scene.Entity, m *scene.Material) (*ir.Node, *UnsupportedEntityError) {
	switch m.Type {
	case "diffuse":
		n := ir.New(ir.ClassBSDF, "diffuse")
		b.colour(n, "reflectance", m)
		return n, nil
	case "emission":
		return ir.New(ir.ClassBSDF, "diffuse").RGB("reflectance", mathutil.Vec3{}), nil
	case "plastic":
		if m.Roughness > 0 {
			n := ir.New(ir.ClassBSDF, "roughplastic")
			b.colour(n, "diffuse_reflectance", m)
			return n.Float("alpha", alpha(m.Roughness)).Float("int_ior", m.IOR), nil
		}
		n := ir.New(ir.ClassBSDF, "plastic")
		b.colour(n, "diffuse_reflectance", m)
		return n.Float("int_ior", m.IOR), nil
	case "conductor", "metal":
		typ := "conductor"
		if m.Roughness > 0 {
			typ = "roughconductor"
		}
		n := ir.New(ir.ClassBSDF, typ).Str("material", "none")
		b.colour(n, "specular_reflectance", m)
		if m.Roughness > 0 {
			n.Float("alpha", alpha(m.Roughness))
		}
		return n, nil
	case "dielectric", "glass":
		if m.Roughness > 0 {
			return ir.New(ir.ClassBSDF, "roughdielectric").
				Float("int_ior", m.IOR).
				Float("alpha", alpha(m.Roughness)), nil
		}
		return ir.New(ir.ClassBSDF, "dielectric").Float("int_ior", m.IOR), nil
	}
	return nil, unsupported(e, "material type %q has no mapping", m.Type)
}

// colour sets a reflectance parameter from the base colour or its image.
func (b *Builder) colour(n *ir.Node, name string, m *scene.Material) {
	if m.BaseColorTexture == "" {
		n.RGB(name, m.BaseColor)
		return
	}
	n.Ref(name, b.bitmap(m.BaseColorTexture))
}

// bitmap returns the shared texture node for an image reference.
func (b *Builder) bitmap(ref string) *ir.Node {
	if n, ok := b.textures[ref]; ok {
		return n
	}
	a := b.imageAsset(ref)
	n := ir.New(ir.ClassTexture, "bitmap").Str("filename", a.Path)
	n.ID = b.sharedID("tex-", imageStem(ref), ir.ClassTexture)
	n.Key = ref
	n.Asset = a
	b.textures[ref] = n
	return n
}

// imageAsset returns the output file of a source image, one per reference.
func (b *Builder) imageAsset(ref string) ir.Asset {
	if a, ok := b.images[ref]; ok {
		return a
	}
	file := path.Join(TextureDir, b.files.Named("", imageStem(ref), "texture")+texture.OutputExt(ref))
	a := ir.Asset{Kind: ir.AssetTexture, Path: file, Image: ref}
	b.images[ref] = a
	return a
}

func imageStem(ref string) string {
	base := path.Base(strings.ReplaceAll(ref, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
