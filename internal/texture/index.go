package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// Index maps lowercase texture stems to filesystem paths under a scene
// directory, so documents exported on another machine still find their
// images by name.
type Index struct {
	root    string
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans root and root/textures for image files. The first file
// found for a stem wins; directories are walked in lexical order.
func BuildIndex(root string) *Index {
	idx := &Index{root: root, entries: make(map[string]string)}
	if root == "" {
		return idx
	}

	for _, dir := range []string{root, filepath.Join(root, "textures"), filepath.Join(root, "Textures")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !IsImage(path) {
				return nil
			}
			stem := stemOf(path)
			if _, exists := idx.entries[stem]; !exists {
				idx.entries[stem] = path
			}
			return nil
		})
	}
	return idx
}

// ResolvePath returns the filesystem path for a texture reference, or ("", false).
// Absolute and root-relative paths that exist are used as-is; otherwise the
// reference is matched by stem.
func (idx *Index) ResolvePath(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	ref = strings.ReplaceAll(ref, "\\", "/")
	// Host-relative prefix ("//textures/wood.png").
	ref = strings.TrimPrefix(ref, "//")

	candidates := []string{ref}
	if !filepath.IsAbs(ref) && idx.root != "" {
		candidates = append([]string{filepath.Join(idx.root, ref)}, candidates...)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}

	path, ok := idx.entries[stemOf(ref)]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
