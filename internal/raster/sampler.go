package raster

import (
	"image"
	"math"
)

// Sample returns the bilinearly filtered texel at (u, v), wrapping both
// coordinates. v=0 is the bottom row of the image, as in mesh UVs.
func Sample(tex *image.NRGBA, u, v float64) [4]uint8 {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return [4]uint8{}
	}

	fx := (u - math.Floor(u)) * float64(w-1)
	fy := (1 - (v - math.Floor(v))) * float64(h-1)
	x0, y0 := int(fx), int(fy)
	dx, dy := fx-float64(x0), fy-float64(y0)

	taps := [4]struct {
		off    int
		weight float64
	}{
		{tex.PixOffset(x0, y0), (1 - dx) * (1 - dy)},
		{tex.PixOffset((x0+1)%w, y0), dx * (1 - dy)},
		{tex.PixOffset(x0, (y0+1)%h), (1 - dx) * dy},
		{tex.PixOffset((x0+1)%w, (y0+1)%h), dx * dy},
	}

	var out [4]uint8
	for c := 0; c < 4; c++ {
		var acc float64
		for _, t := range taps {
			acc += float64(tex.Pix[t.off+c]) * t.weight
		}
		out[c] = uint8(acc + 0.5)
	}
	return out
}
