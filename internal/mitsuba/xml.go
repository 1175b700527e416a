package mitsuba

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"mitsuba-export/internal/ir"
	"mitsuba-export/internal/mathutil"
)

const indent = "    "

// encoder renders plugin nodes as Mitsuba scene markup.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) header(version string) {
	e.buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	e.buf.WriteString(`<scene version="` + attr(version) + `">` + "\n")
}

func (e *encoder) footer() {
	e.buf.WriteString("</scene>\n")
}

func (e *encoder) include(filename string) {
	e.buf.WriteString(indent + `<include filename="` + attr(filename) + `"/>` + "\n")
}

func (e *encoder) blank() {
	e.buf.WriteByte('\n')
}

// node writes n and its nested children. name is the parameter name when n
// is nested, empty at the top level.
func (e *encoder) node(n *ir.Node, name string, depth int) {
	pad := strings.Repeat(indent, depth)
	e.buf.WriteString(pad + "<" + string(n.Class) + ` type="` + attr(n.Type) + `"`)
	if n.ID != "" {
		e.buf.WriteString(` id="` + attr(n.ID) + `"`)
	}
	if name != "" {
		e.buf.WriteString(` name="` + attr(name) + `"`)
	}
	if len(n.Params) == 0 {
		e.buf.WriteString("/>\n")
		return
	}
	e.buf.WriteString(">\n")
	for _, p := range n.Params {
		e.param(p, depth+1)
	}
	e.buf.WriteString(pad + "</" + string(n.Class) + ">\n")
}

func (e *encoder) param(p ir.Param, depth int) {
	pad := strings.Repeat(indent, depth)
	v := p.Value
	switch v.Kind {
	case ir.KindChild:
		e.node(v.Node, p.Name, depth)
		return
	case ir.KindRef:
		e.buf.WriteString(pad + `<ref id="` + attr(v.Node.ID) + `"`)
		if p.Name != "" {
			e.buf.WriteString(` name="` + attr(p.Name) + `"`)
		}
		e.buf.WriteString("/>\n")
		return
	case ir.KindTransform:
		e.buf.WriteString(pad + `<transform name="` + attr(p.Name) + `">` + "\n")
		e.buf.WriteString(pad + indent + `<matrix value="` + matrix(v.Transform) + `"/>` + "\n")
		e.buf.WriteString(pad + "</transform>\n")
		return
	}

	var tag, value string
	switch v.Kind {
	case ir.KindFloat:
		tag, value = "float", Float(v.Float)
	case ir.KindInt:
		tag, value = "integer", strconv.Itoa(v.Int)
	case ir.KindBool:
		tag, value = "boolean", strconv.FormatBool(v.Bool)
	case ir.KindString:
		tag, value = "string", v.Str
	case ir.KindRGB:
		tag, value = "rgb", triple(v.Vec)
	case ir.KindPoint:
		tag, value = "point", triple(v.Vec)
	case ir.KindVector:
		tag, value = "vector", triple(v.Vec)
	}
	e.buf.WriteString(pad + "<" + tag + ` name="` + attr(p.Name) + `" value="` + attr(value) + `"/>` + "\n")
}

// Float formats f as the shortest decimal that parses back to the same
// float64. Negative zero is written as 0.
func Float(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func triple(v mathutil.Vec3) string {
	return Float(v[0]) + ", " + Float(v[1]) + ", " + Float(v[2])
}

func matrix(m mathutil.Mat4) string {
	parts := make([]string, len(m))
	for i, f := range m {
		parts[i] = Float(f)
	}
	return strings.Join(parts, " ")
}

func attr(s string) string {
	var b strings.Builder
	// Writes to a strings.Builder cannot fail.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
