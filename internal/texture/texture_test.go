package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	switch filepath.Ext(path) {
	case ".bmp":
		require.NoError(t, bmp.Encode(&buf, img))
	case ".tga":
		require.NoError(t, tga.Encode(&buf, img))
	default:
		require.NoError(t, png.Encode(&buf, img))
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestOutputExt(t *testing.T) {
	assert.Equal(t, ".png", OutputExt("a/b/wood.PNG"))
	assert.Equal(t, ".jpg", OutputExt("wood.jpg"))
	assert.Equal(t, ".exr", OutputExt("sky.exr"))
	assert.Equal(t, ".png", OutputExt("wood.tga"))
	assert.Equal(t, ".png", OutputExt("wood.webp"))
}

func TestIndexResolve(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "textures", "Wood.png"), 4, 4)

	idx := BuildIndex(root)
	assert.Equal(t, 1, idx.Len())

	p, ok := idx.ResolvePath("textures/Wood.png")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "textures", "Wood.png"), p)

	// Moved documents still find the image by stem.
	p, ok = idx.ResolvePath(`C:\old\place\wood.png`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "textures", "Wood.png"), p)

	_, ok = idx.ResolvePath("missing.png")
	assert.False(t, ok)
}

func TestExportCopiesPassthrough(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "wood.png")
	writeImage(t, src, 8, 8)

	idx := BuildIndex(root)
	e := NewExporter(idx, NewCache(idx), 0)
	dst := filepath.Join(t.TempDir(), "wood.png")
	require.NoError(t, e.Export("wood.png", dst))

	want, _ := os.ReadFile(src)
	got, _ := os.ReadFile(dst)
	assert.Equal(t, want, got)
}

func TestExportConvertsAndResizes(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "brick.bmp"), 64, 32)

	idx := BuildIndex(root)
	e := NewExporter(idx, NewCache(idx), 16)
	dst := filepath.Join(t.TempDir(), "brick"+OutputExt("brick.bmp"))
	require.NoError(t, e.Export("brick.bmp", dst))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
}

func TestExportMissing(t *testing.T) {
	idx := BuildIndex(t.TempDir())
	e := NewExporter(idx, NewCache(idx), 0)
	err := e.Export("nope.png", filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorContains(t, err, "not found")
}

func TestCacheLoadsOnce(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "a.png"), 2, 2)
	c := NewCache(BuildIndex(root))

	first := c.Resolve("a.png")
	require.NotNil(t, first)
	assert.Same(t, first, c.Resolve("a.png"))
	assert.Nil(t, c.Resolve("b.png"))
}

func TestCacheConcurrentLoads(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.png")
	writeImage(t, path, 4, 4)
	c := NewCache(BuildIndex(root))

	var wg sync.WaitGroup
	got := make([]*image.NRGBA, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := c.Load(path)
			assert.NoError(t, err)
			got[i] = img
		}(i)
	}
	wg.Wait()

	require.NotNil(t, got[0])
	for _, img := range got[1:] {
		assert.Same(t, got[0], img)
	}
}

func TestLoadTextureByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.png", "b.tga", "c.bmp"} {
		writeImage(t, filepath.Join(root, name), 3, 2)
		img, err := LoadTexture(filepath.Join(root, name))
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds(), name)
		assert.Equal(t, color.NRGBA{R: 2, G: 1, B: 50, A: 255}, img.NRGBAAt(2, 1), name)
	}

	w, h, err := imageSize(filepath.Join(root, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 2}, [2]int{w, h})

	_, err = LoadTexture(filepath.Join(root, "sky.exr"))
	assert.ErrorContains(t, err, "cannot be decoded")
}

func TestExportInPlaceKeepsSource(t *testing.T) {
	root := t.TempDir()
	wood := filepath.Join(root, "textures", "wood.png")
	writeImage(t, wood, 4, 4)
	exr := filepath.Join(root, "textures", "sky.exr")
	require.NoError(t, os.WriteFile(exr, []byte("not really an exr payload"), 0644))
	wantPNG, _ := os.ReadFile(wood)

	idx := BuildIndex(root)
	e := NewExporter(idx, NewCache(idx), 0)
	require.NoError(t, e.Export("textures/wood.png", wood))
	require.NoError(t, e.Export("textures/sky.exr", exr))

	got, _ := os.ReadFile(wood)
	assert.Equal(t, wantPNG, got)
	got, _ = os.ReadFile(exr)
	assert.Equal(t, "not really an exr payload", string(got))

	// Downscaling onto the source would lose the original.
	e = NewExporter(idx, NewCache(idx), 2)
	assert.ErrorContains(t, e.Export("textures/wood.png", wood), "overwrite the source")
	got, _ = os.ReadFile(wood)
	assert.Equal(t, wantPNG, got)
}
