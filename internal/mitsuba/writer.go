// Package mitsuba writes a plugin graph as Mitsuba 2 scene markup, either as
// one file or as fragments linked from a root file, together with the mesh
// and texture files the markup references.
package mitsuba

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mitsuba-export/internal/batch"
	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/log"
)

// Category is a fragment of a split export. Fragments load in Category order.
type Category int

const (
	CategoryRender Category = iota
	CategoryMaterials
	CategoryShapes
	CategoryEmitters
	CategorySensor
	numCategories
)

var categoryNames = [numCategories]string{"render", "materials", "shapes", "emitters", "sensor"}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// CategoryOf returns the fragment a plugin class belongs to.
func CategoryOf(c ir.Class) Category {
	switch c {
	case ir.ClassBSDF, ir.ClassTexture:
		return CategoryMaterials
	case ir.ClassShape:
		return CategoryShapes
	case ir.ClassEmitter:
		return CategoryEmitters
	case ir.ClassSensor, ir.ClassFilm, ir.ClassSampler:
		return CategorySensor
	}
	return CategoryRender
}

// FragmentName returns the file name of a fragment of the scene file path.
func FragmentName(path string, c Category) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_" + c.String() + ".xml"
}

// TextureWriter produces a texture file from a source image reference.
type TextureWriter interface {
	Export(ref, dst string) error
}

// Options configures Write.
type Options struct {
	// Path is the root scene file.
	Path  string
	Split bool
	// Version is the scene format version; DefaultVersion when empty.
	Version  string
	Workers  int
	Textures TextureWriter
	Logger   *log.Logger
}

// File is one written file, relative to the scene directory.
type File struct {
	Path string
	Kind string
}

// File kinds.
const (
	KindScene    = "scene"
	KindFragment = "fragment"
	KindMesh     = "mesh"
	KindTexture  = "texture"
)

// Result lists the files of a successful write. The root file is last.
type Result struct {
	Root  string
	Files []File
}

type document struct {
	name string
	body []byte
}

// Write serializes the graph under root. Asset and fragment files are
// written concurrently; the root file is written only after all of them
// succeeded. A failed file is reported as *WriteError.
func Write(ctx context.Context, root *ir.Node, opts Options) (*Result, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("mitsuba: no output path")
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	logger := log.OrNop(opts.Logger)
	if err := ir.Validate(root); err != nil {
		return nil, fmt.Errorf("mitsuba: %w", err)
	}

	groups := Layout(root, opts.Split)
	if err := Verify(groups); err != nil {
		return nil, err
	}

	dir := filepath.Dir(opts.Path)
	var (
		jobs  []batch.Job
		files []File
	)
	for _, a := range assets(groups) {
		a := a
		dst := filepath.Join(dir, filepath.FromSlash(a.Path))
		switch a.Kind {
		case ir.AssetPLY:
			files = append(files, File{Path: a.Path, Kind: KindMesh})
			jobs = append(jobs, batch.Job{Name: a.Path, Run: func(context.Context) error {
				return writeFile(dst, func(w io.Writer) error { return WritePLY(w, a.Geometry) })
			}})
		case ir.AssetTexture:
			files = append(files, File{Path: a.Path, Kind: KindTexture})
			jobs = append(jobs, batch.Job{Name: a.Path, Run: func(context.Context) error {
				return writeTexture(opts.Textures, a, dst)
			}})
		}
	}

	var rootDoc document
	if opts.Split {
		enc := &encoder{}
		enc.header(opts.Version)
		for c, nodes := range groups {
			if len(nodes) == 0 {
				continue
			}
			doc := document{name: FragmentName(opts.Path, Category(c)), body: encodeNodes(opts.Version, nodes)}
			enc.include(doc.name)
			dst := filepath.Join(dir, doc.name)
			files = append(files, File{Path: doc.name, Kind: KindFragment})
			jobs = append(jobs, batch.Job{Name: doc.name, Run: func(context.Context) error {
				return writeFile(dst, bytesWriter(doc.body))
			}})
		}
		enc.footer()
		rootDoc = document{name: filepath.Base(opts.Path), body: enc.buf.Bytes()}
	} else {
		var all []*ir.Node
		for _, nodes := range groups {
			all = append(all, nodes...)
		}
		rootDoc = document{name: filepath.Base(opts.Path), body: encodeNodes(opts.Version, all)}
	}

	logger.Debugw("writing scene", "path", opts.Path, "split", opts.Split, "files", len(jobs)+1)
	if _, err := batch.Run(ctx, jobs, batch.Options{Workers: opts.Workers, Logger: logger}); err != nil {
		var werr *WriteError
		if errors.As(err, &werr) {
			return nil, werr
		}
		return nil, fmt.Errorf("mitsuba: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mitsuba: %w", err)
	}
	if err := writeFile(opts.Path, bytesWriter(rootDoc.body)); err != nil {
		return nil, err
	}
	files = append(files, File{Path: rootDoc.name, Kind: KindScene})
	return &Result{Root: opts.Path, Files: files}, nil
}

// Layout orders the top-level plugins under root into per-category groups
// in load order. Shared nodes precede their first referrer. In split mode a
// shared node sits in its own category unless a referrer loads earlier, in
// which case it moves to the earliest referring group. Without split every
// shared node is hoisted to the start and all nodes end up in the first
// group.
func Layout(root *ir.Node, split bool) [][]*ir.Node {
	var tops []*ir.Node
	for _, p := range root.Params {
		if p.Value.Kind == ir.KindChild {
			tops = append(tops, p.Value.Node)
		}
	}
	sort.SliceStable(tops, func(i, j int) bool {
		return CategoryOf(tops[i].Class) < CategoryOf(tops[j].Class)
	})
	shared := ir.Shared(tops)

	groups := make([][]*ir.Node, numCategories)
	if !split {
		groups[0] = append(append(groups[0], shared...), tops...)
		return groups
	}

	place := make(map[*ir.Node]Category)
	referrers := make(map[*ir.Node][]*ir.Node)
	for _, n := range tops {
		place[n] = CategoryOf(n.Class)
		for _, r := range n.Refs() {
			referrers[r] = append(referrers[r], n)
		}
	}
	for _, n := range shared {
		for _, r := range n.Refs() {
			referrers[r] = append(referrers[r], n)
		}
	}
	// Referrers of a shared node come after it in post-order.
	for i := len(shared) - 1; i >= 0; i-- {
		n := shared[i]
		c := CategoryOf(n.Class)
		for _, r := range referrers[n] {
			if place[r] < c {
				c = place[r]
			}
		}
		place[n] = c
	}

	for _, n := range shared {
		groups[place[n]] = append(groups[place[n]], n)
	}
	for _, n := range tops {
		groups[place[n]] = append(groups[place[n]], n)
	}
	return groups
}

// Verify checks that, loading groups in order, every reference names a node
// defined before it.
func Verify(groups [][]*ir.Node) error {
	defined := make(map[string]bool)
	for _, nodes := range groups {
		for _, n := range nodes {
			for _, r := range n.Refs() {
				if !defined[r.ID] {
					return fmt.Errorf("mitsuba: %s %q references %q before it is defined", n.Class, n.ID, r.ID)
				}
			}
			if n.ID != "" {
				if defined[n.ID] {
					return fmt.Errorf("mitsuba: duplicate id %q", n.ID)
				}
				defined[n.ID] = true
			}
		}
	}
	return nil
}

func encodeNodes(version string, nodes []*ir.Node) []byte {
	enc := &encoder{}
	enc.header(version)
	var last ir.Class
	for i, n := range nodes {
		if i > 0 && n.Class != last {
			enc.blank()
		}
		enc.node(n, "", 1)
		last = n.Class
	}
	enc.footer()
	return enc.buf.Bytes()
}

// assets returns every asset referenced from the groups, once per path, in
// load order.
func assets(groups [][]*ir.Node) []ir.Asset {
	seen := make(map[string]bool)
	var out []ir.Asset
	for _, nodes := range groups {
		for _, top := range nodes {
			ir.Walk(top, func(n *ir.Node) {
				a := n.Asset
				if a.Kind == ir.AssetNone || seen[a.Path] {
					return
				}
				seen[a.Path] = true
				out = append(out, a)
			})
		}
	}
	return out
}

func writeTexture(tw TextureWriter, a ir.Asset, dst string) error {
	if tw == nil {
		return &WriteError{Path: dst, Err: errors.New("no texture source configured")}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	if err := tw.Export(a.Image, dst); err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	return nil
}

func bytesWriter(b []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	}
}

func writeFile(path string, fill func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := fill(f); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
