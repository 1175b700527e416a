package texture

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Extensions the renderer reads directly. HDR formats are never decoded
// here, only copied.
var (
	passthrough = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".exr": true, ".hdr": true, ".pfm": true}
	opaque      = map[string]bool{".exr": true, ".hdr": true, ".pfm": true}
)

type codec struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

// decoders is keyed by extension. TGA has no magic number and registers
// itself for every input, so image.Decode sniffing is never used.
var decoders = map[string]codec{
	".png":  {png.Decode, png.DecodeConfig},
	".jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	".jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	".gif":  {gif.Decode, gif.DecodeConfig},
	".tga":  {tga.Decode, tga.DecodeConfig},
	".bmp":  {bmp.Decode, bmp.DecodeConfig},
	".tif":  {tiff.Decode, tiff.DecodeConfig},
	".tiff": {tiff.Decode, tiff.DecodeConfig},
	".webp": {nativewebp.Decode, nativewebp.DecodeConfig},
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsImage reports whether path has an extension the exporter can handle.
func IsImage(path string) bool {
	e := ext(path)
	_, ok := decoders[e]
	return passthrough[e] || ok
}

// OutputExt returns the extension a source image has once exported:
// formats the renderer reads keep theirs, everything else becomes PNG.
func OutputExt(src string) string {
	e := ext(src)
	if passthrough[e] {
		return e
	}
	return ".png"
}

// LoadTexture decodes an image file into NRGBA.
func LoadTexture(path string) (*image.NRGBA, error) {
	c, ok := decoders[ext(path)]
	if !ok {
		return nil, fmt.Errorf("texture: %s cannot be decoded", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()

	img, err := c.decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

// imageSize reads only the header of an image file.
func imageSize(path string) (int, int, error) {
	c, ok := decoders[ext(path)]
	if !ok {
		return 0, 0, fmt.Errorf("texture: %s cannot be decoded", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := c.config(f)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// toNRGBA converts any image to NRGBA format, rebased at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
