package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"mitsuba-export/internal/scene"
)

func main() {
	selection := flag.Bool("selection", false, "Selected objects only")
	keepBackground := flag.Bool("keep-background", false, "Include the default background")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] scene.json\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	sc, err := scene.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	w, err := scene.NewWalker(sc, scene.WalkOptions{
		UseSelection:     *selection,
		IgnoreBackground: !*keepBackground,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scene %q: %d objects, %d materials\n", sc.Name, len(sc.Objects), len(sc.Materials()))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKIND\tID\tNAME\tDETAIL")
	n := 0
	for e, ok := w.Next(); ok; e, ok = w.Next() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", n, e.Kind, e.ID, e.Name, detail(e))
		n++
	}
	tw.Flush()
}

func detail(e scene.Entity) string {
	switch e.Kind {
	case scene.KindMesh:
		tris := 0
		for _, f := range e.Mesh.Faces {
			tris += len(f.Indices) - 2
		}
		return fmt.Sprintf("verts=%d tris=%d slots=%v", len(e.Mesh.Verts), tris, e.Mesh.UsedSlots())
	case scene.KindMaterial:
		return e.Material.Type
	case scene.KindLight:
		return fmt.Sprintf("%s %gW", e.Light.Type, e.Light.Energy)
	case scene.KindCamera:
		w, h := e.Render.Size()
		return fmt.Sprintf("%s %dx%d", e.Camera.Type, w, h)
	case scene.KindWorld:
		if e.World.Environment != "" {
			return "envmap " + e.World.Environment
		}
		return fmt.Sprintf("constant strength=%g", e.World.Strength)
	case scene.KindUnsupported:
		return e.HostType
	}
	return ""
}
