package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisConversionIdentity(t *testing.T) {
	m, err := AxisConversion("Y", "Z")
	require.NoError(t, err)
	assert.True(t, m.IsIdentity())
}

func TestAxisConversionYUp(t *testing.T) {
	m, err := AxisConversion(DefaultAxisForward, DefaultAxisUp)
	require.NoError(t, err)

	// Host up (+Z) becomes +Y, host forward (+Y) becomes -Z.
	assert.True(t, m.MulDir(Vec3{0, 0, 1}).ApproxEqual(Vec3{0, 1, 0}, 1e-12))
	assert.True(t, m.MulDir(Vec3{0, 1, 0}).ApproxEqual(Vec3{0, 0, -1}, 1e-12))
	assert.True(t, m.MulDir(Vec3{1, 0, 0}).ApproxEqual(Vec3{1, 0, 0}, 1e-12))
	assert.Equal(t, Vec3{}, m.Translation())
}

func TestAxisConversionRejectsParallelAxes(t *testing.T) {
	for _, tc := range []struct{ forward, up string }{
		{"Y", "Y"},
		{"X", "-X"},
		{"W", "Z"},
		{"", "Z"},
	} {
		_, err := AxisConversion(tc.forward, tc.up)
		assert.Error(t, err, "forward=%q up=%q", tc.forward, tc.up)
	}
}

func TestMat4MulPoint(t *testing.T) {
	m := ComposeTRS(Vec3{1, 2, 3}, AxisAngle(Vec3{0, 0, 1}, math.Pi/2), Vec3{2, 2, 2})
	p := m.MulPoint(Vec3{1, 0, 0})
	assert.True(t, p.ApproxEqual(Vec3{1, 4, 3}, 1e-12), "got %v", p)

	d := m.MulDir(Vec3{1, 0, 0})
	assert.True(t, d.ApproxEqual(Vec3{0, 2, 0}, 1e-12), "got %v", d)
}

func TestQuatMatchesEuler(t *testing.T) {
	q := EulerToQuat(0, 0, math.Pi/2)
	r := QuatToMat3(q.Normalize())
	want := AxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	for i := range r {
		assert.InDelta(t, want[i], r[i], 1e-12)
	}

	wxyz := QuatFromWXYZ([4]float64{q[3], q[0], q[1], q[2]})
	assert.Equal(t, q, wxyz)
}

func TestCameraFlip(t *testing.T) {
	// Host cameras look down -Z; after the flip the view direction is +Z.
	assert.Equal(t, Vec3{0, 0, 1}, CameraFlip.MulDir(Vec3{0, 0, -1}))
}

func TestInverseAffine(t *testing.T) {
	m := ComposeTRS(Vec3{1, 2, 3}, AxisAngle(Vec3{0, 0, 1}, 0.7), Vec3{2, 0.5, 4})
	inv, ok := m.InverseAffine()
	require.True(t, ok)
	assert.True(t, Mat4Mul(inv, m).IsIdentity())

	_, ok = Mat4Diag(1, 0, 1).InverseAffine()
	assert.False(t, ok)
}

func TestAxisAngle(t *testing.T) {
	r := AxisAngle(Vec3{2, 0, 0}, math.Pi/2)
	assert.True(t, r.MulVec3(Vec3{0, 1, 0}).ApproxEqual(Vec3{0, 0, 1}, 1e-12))
	assert.InDelta(t, 1, r.Det(), 1e-12)
}
