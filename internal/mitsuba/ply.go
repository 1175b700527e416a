package mitsuba

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"mitsuba-export/internal/ir"
)

// WritePLY writes g as a binary little-endian PLY mesh with optional
// per-vertex normals and texture coordinates.
func WritePLY(w io.Writer, g *ir.Geometry) error {
	n := len(g.Positions)
	hasNormals := len(g.Normals) == n && n > 0
	hasUVs := len(g.UVs) == n && n > 0

	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "ply\nformat binary_little_endian 1.0\n")
	fmt.Fprintf(bw, "element vertex %d\n", n)
	fmt.Fprint(bw, "property float x\nproperty float y\nproperty float z\n")
	if hasNormals {
		fmt.Fprint(bw, "property float nx\nproperty float ny\nproperty float nz\n")
	}
	if hasUVs {
		fmt.Fprint(bw, "property float u\nproperty float v\n")
	}
	fmt.Fprintf(bw, "element face %d\n", len(g.Triangles))
	fmt.Fprint(bw, "property list uchar int vertex_indices\nend_header\n")

	var rec [4 * 8]byte
	for i, p := range g.Positions {
		k := put32(rec[:], 0, p[0], p[1], p[2])
		if hasNormals {
			k = put32(rec[:], k, g.Normals[i][0], g.Normals[i][1], g.Normals[i][2])
		}
		if hasUVs {
			k = put32(rec[:], k, g.UVs[i][0], g.UVs[i][1])
		}
		if _, err := bw.Write(rec[:k]); err != nil {
			return err
		}
	}

	var face [13]byte
	face[0] = 3
	for _, t := range g.Triangles {
		for j, idx := range t {
			if int(idx) >= n {
				return fmt.Errorf("mitsuba: triangle index %d out of range (%d vertices)", idx, n)
			}
			binary.LittleEndian.PutUint32(face[1+4*j:], idx)
		}
		if _, err := bw.Write(face[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func put32(buf []byte, off int, vals ...float32) int {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return off
}
