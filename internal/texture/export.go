package texture

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"mitsuba-export/internal/postprocess"
)

// Exporter copies or converts source images into the export directory.
type Exporter struct {
	index *Index
	cache *Cache
	// MaxSize bounds the larger image dimension; 0 keeps the source size.
	MaxSize int
}

func NewExporter(index *Index, cache *Cache, maxSize int) *Exporter {
	return &Exporter{index: index, cache: cache, MaxSize: maxSize}
}

// Export writes the image referenced by ref to dst. The destination
// extension decides the encoding and must come from OutputExt(ref).
func (e *Exporter) Export(ref, dst string) error {
	src, ok := e.index.ResolvePath(ref)
	if !ok {
		return fmt.Errorf("texture: %q not found", ref)
	}
	inPlace := sameFile(src, dst)

	if opaque[ext(src)] {
		if inPlace {
			return nil
		}
		return copyFile(src, dst)
	}
	if passthrough[ext(src)] && ext(src) == ext(dst) {
		w, h, err := imageSize(src)
		if err != nil {
			return err
		}
		if !e.needsResize(w, h) {
			if inPlace {
				return nil
			}
			return copyFile(src, dst)
		}
	}
	if inPlace {
		return fmt.Errorf("texture: converting %s would overwrite the source", src)
	}

	img, err := e.cache.Load(src)
	if err != nil {
		return err
	}
	b := img.Bounds()
	if e.needsResize(b.Dx(), b.Dy()) {
		w, h := fit(b.Dx(), b.Dy(), e.MaxSize)
		img = postprocess.Resize(img, w, h)
	}
	return encodeFile(img, dst)
}

func (e *Exporter) needsResize(w, h int) bool {
	return e.MaxSize > 0 && (w > e.MaxSize || h > e.MaxSize)
}

// fit scales (w, h) so the larger side equals max, keeping the aspect ratio.
func fit(w, h, max int) (int, int) {
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}

func encodeFile(img image.Image, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("texture: create %s: %w", dst, err)
	}
	switch ext(dst) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("texture: encode %s: %w", dst, err)
	}
	return nil
}

// sameFile reports whether dst already is src, e.g. when exporting next to
// the scene document.
func sameFile(src, dst string) bool {
	a, err := os.Stat(src)
	if err != nil {
		return false
	}
	b, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("texture: read %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("texture: create %s: %w", dst, err)
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("texture: copy %s: %w", src, err)
	}
	return nil
}
