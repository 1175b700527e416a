package scene_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mitsuba-export/internal/scene"
	"mitsuba-export/internal/scene/scenetest"
)

func kinds(es []scene.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Kind.String() + ":" + e.ID
	}
	return out
}

func TestWalkerOrder(t *testing.T) {
	s := scenetest.WithWorld(scenetest.SharedMaterial())
	w, err := scene.NewWalker(s, scene.WalkOptions{IgnoreBackground: true})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"material:mat.wood", "mesh:obj.a",
		"material:mat.wood", "mesh:obj.b",
		"light:obj.lamp",
		"camera:obj.cam",
		"world:world",
	}, kinds(w.Collect()))
}

func TestWalkerIsStableAcrossWalks(t *testing.T) {
	s := scenetest.SharedMaterial()
	first, err := scene.NewWalker(s, scene.WalkOptions{})
	require.NoError(t, err)
	second, err := scene.NewWalker(s, scene.WalkOptions{})
	require.NoError(t, err)
	assert.Equal(t, kinds(first.Collect()), kinds(second.Collect()))
}

func TestWalkerNotRestartable(t *testing.T) {
	w, err := scene.NewWalker(scenetest.SharedMaterial(), scene.WalkOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, w.Collect())

	_, ok := w.Next()
	assert.False(t, ok)
	assert.Empty(t, w.Collect())
}

func TestWalkerSelectionOnly(t *testing.T) {
	w, err := scene.NewWalker(scenetest.SharedMaterial(), scene.WalkOptions{UseSelection: true, IgnoreBackground: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"material:mat.wood", "mesh:obj.b"}, kinds(w.Collect()))
}

func TestWalkerBackground(t *testing.T) {
	count := func(s *scene.Scene, ignore bool) int {
		w, err := scene.NewWalker(s, scene.WalkOptions{IgnoreBackground: ignore})
		require.NoError(t, err)
		n := 0
		for _, e := range w.Collect() {
			if e.Kind == scene.KindWorld {
				n++
			}
		}
		return n
	}

	def := scenetest.SharedMaterial()
	assert.Equal(t, 0, count(def, true), "default world is suppressed")
	assert.Equal(t, 1, count(def, false))

	def.World = &scene.World{Color: scene.DefaultWorldColor, Strength: 1}
	assert.Equal(t, 0, count(def, true), "default grey counts as default")

	custom := scenetest.WithWorld(scenetest.SharedMaterial())
	assert.Equal(t, 1, count(custom, true))
	assert.Equal(t, 1, count(custom, false))
}

func TestWalkerErrors(t *testing.T) {
	var readErr *scene.ReadError

	_, err := scene.NewWalker(nil, scene.WalkOptions{})
	require.ErrorAs(t, err, &readErr)

	s := scenetest.SharedMaterial()
	s.Evaluated = false
	_, err = scene.NewWalker(s, scene.WalkOptions{})
	require.ErrorAs(t, err, &readErr)
	assert.Contains(t, err.Error(), "not been evaluated")

	s = scenetest.SharedMaterial()
	s.Objects[0].Materials = []string{"missing"}
	_, err = scene.NewWalker(s, scene.WalkOptions{})
	require.ErrorAs(t, err, &readErr)

	s = scenetest.SharedMaterial()
	mesh, _ := s.Mesh("mesh.a")
	mesh.Faces[0].Indices = []int{0, 1, 9}
	_, err = scene.NewWalker(s, scene.WalkOptions{})
	require.ErrorAs(t, err, &readErr)
	assert.Contains(t, err.Error(), "vertex index 9 out of range")

	s = scenetest.SharedMaterial()
	mesh, _ = s.Mesh("mesh.b")
	mesh.Faces[0].Indices = []int{0, 1}
	_, err = scene.NewWalker(s, scene.WalkOptions{})
	require.ErrorAs(t, err, &readErr)

	s = scenetest.SharedMaterial()
	s.ActiveCamera = "nope"
	_, err = scene.NewWalker(s, scene.WalkOptions{})
	require.ErrorAs(t, err, &readErr)
}

func TestWalkerEmitsDegenerateMeshes(t *testing.T) {
	s := scenetest.SharedMaterial()
	empty := &scene.MeshData{ID: "empty", Name: "Empty"}
	s.AddMesh(empty)
	s.Objects[0].MeshID = "empty"

	w, err := scene.NewWalker(s, scene.WalkOptions{IgnoreBackground: true})
	require.NoError(t, err)
	es := w.Collect()
	require.Equal(t, scene.KindMesh, es[1].Kind)
	assert.Same(t, empty, es[1].Mesh)
}
