package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestResizeKeepsSolidColour(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	out := Resize(solid(64, 32, c), 16, 8)
	assert.Equal(t, image.Rect(0, 0, 16, 8), out.Bounds())
	got := out.NRGBAAt(8, 4)
	assert.InDelta(t, 200, int(got.R), 1)
	assert.InDelta(t, 100, int(got.G), 1)
	assert.InDelta(t, 50, int(got.B), 1)
	assert.Equal(t, uint8(255), got.A)
}

func TestResizeSameSizeIsNoop(t *testing.T) {
	img := solid(4, 4, color.NRGBA{A: 255})
	assert.Same(t, img, Resize(img, 4, 4))
}

func TestDownsample(t *testing.T) {
	img := solid(40, 20, color.NRGBA{R: 10, A: 255})
	assert.Equal(t, image.Rect(0, 0, 20, 10), Downsample(img, 2).Bounds())
	assert.Same(t, img, Downsample(img, 1))
}

func TestTransparentStaysTransparent(t *testing.T) {
	out := Resize(solid(8, 8, color.NRGBA{R: 255}), 4, 4)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(1, 1))
}
