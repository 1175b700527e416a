package scene_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/scene"
)

func TestLoadRoom(t *testing.T) {
	s, err := scene.Load("testdata/room.json")
	require.NoError(t, err)

	assert.Equal(t, "Room", s.Name)
	assert.Equal(t, "testdata", s.Dir)
	w, h := s.Render.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
	assert.Equal(t, 64, s.Render.Samples)
	require.NotNil(t, s.World)
	assert.False(t, s.World.IsDefault())

	m, ok := s.Material("m1")
	require.True(t, ok)
	assert.Equal(t, "diffuse", m.Type)
	assert.Equal(t, 1.5, m.IOR)

	mesh, ok := s.Mesh("cube")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, mesh.UsedSlots())

	cube := s.Objects[0]
	assert.True(t, cube.Visible)
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, cube.MatrixWorld.Translation())
	assert.Equal(t, mathutil.Vec3{2, 0, 0}, cube.MatrixWorld.Column(0))
	assert.False(t, s.Objects[1].Visible)

	w2, err := scene.NewWalker(s, scene.WalkOptions{IgnoreBackground: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"material:m1", "material:m2", "mesh:c1",
		"unsupported:curve",
		"light:sun",
		"camera:cam",
		"world:world",
	}, kinds(w2.Collect()))
}

func TestParseRejectsBadGeometry(t *testing.T) {
	doc := `{"meshes": [{"id": "m", "vertices": [[0,0,0]], "faces": [[0, 1, 2]]}]}`
	_, err := scene.Parse(strings.NewReader(doc))
	var readErr *scene.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Contains(t, err.Error(), "out of range")
}

func TestParseNotEvaluated(t *testing.T) {
	s, err := scene.Parse(strings.NewReader(`{"name": "x", "evaluated": false}`))
	require.NoError(t, err)
	_, err = scene.NewWalker(s, scene.WalkOptions{})
	assert.Error(t, err)
}
