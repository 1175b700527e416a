package raster_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mitsuba-export/internal/mathutil"
	"mitsuba-export/internal/raster"
)

func quad(z float64, half float32, color [4]uint8) raster.Mesh {
	return raster.Mesh{
		Positions: [][3]float32{{-half, -half, 0}, {half, -half, 0}, {half, half, 0}, {-half, half, 0}},
		Triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
		ToWorld:   mathutil.FromMat3Translation(mathutil.Mat3Identity(), mathutil.Vec3{0, 0, z}),
		Color:     color,
	}
}

func TestRenderCoversCentre(t *testing.T) {
	cam := raster.Camera{ToWorld: mathutil.Mat4Identity(), FOV: 90, FOVAxis: "x", Near: 0.01}
	img, err := raster.Render([]raster.Mesh{quad(5, 1, [4]uint8{200, 200, 200, 255})}, cam, 64, 64)
	require.NoError(t, err)

	assert.Equal(t, uint8(255), img.NRGBAAt(32, 32).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)
}

func TestRenderDepthOrder(t *testing.T) {
	cam := raster.Camera{ToWorld: mathutil.Mat4Identity(), FOV: 60, FOVAxis: "larger", Near: 0.01}
	red := quad(3, 0.5, [4]uint8{255, 0, 0, 255})
	blue := quad(5, 2, [4]uint8{0, 0, 255, 255})

	for _, order := range [][]raster.Mesh{{red, blue}, {blue, red}} {
		img, err := raster.Render(order, cam, 48, 32)
		require.NoError(t, err)
		c := img.NRGBAAt(24, 16)
		assert.Greater(t, c.R, c.B)
	}
}

func TestRenderDropsGeometryBehindCamera(t *testing.T) {
	cam := raster.Camera{ToWorld: mathutil.Mat4Identity(), FOV: 90, FOVAxis: "x", Near: 0.1}
	img, err := raster.Render([]raster.Mesh{quad(-5, 1, [4]uint8{255, 255, 255, 255})}, cam, 16, 16)
	require.NoError(t, err)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			require.Zero(t, img.NRGBAAt(x, y).A)
		}
	}
}

func TestRenderOrthographic(t *testing.T) {
	cam := raster.Camera{
		ToWorld:      mathutil.Mat4Diag(3, 3, 1),
		Orthographic: true,
		Near:         0.01,
	}
	img, err := raster.Render([]raster.Mesh{quad(5, 1, [4]uint8{255, 255, 255, 255})}, cam, 30, 30)
	require.NoError(t, err)
	// The quad spans a third of the view.
	assert.Equal(t, uint8(255), img.NRGBAAt(15, 15).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(5, 15).A)
}

func TestRenderRejectsSingularCamera(t *testing.T) {
	_, err := raster.Render(nil, raster.Camera{FOV: 40}, 8, 8)
	assert.Error(t, err)
}

func TestSampleWrapsAndFilters(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(tex.Pix, []uint8{255, 0, 0, 255, 0, 0, 255, 255})

	assert.Equal(t, [4]uint8{255, 0, 0, 255}, raster.Sample(tex, 0, 0.5))
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, raster.Sample(tex, 1.999999999, 0.5), "u wraps to the last texel")
	assert.Equal(t, [4]uint8{128, 0, 128, 255}, raster.Sample(tex, 0.5, 0.5))
}
