package mathutil

import (
	"fmt"
	"strings"
)

// Axis is a signed coordinate axis such as "X" or "-Z".
type Axis struct {
	Index int     // 0=X, 1=Y, 2=Z
	Sign  float64 // +1 or -1
}

// ParseAxis accepts X, Y, Z with an optional leading '-' or '+'.
func ParseAxis(s string) (Axis, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	switch s {
	case "X":
		return Axis{Index: 0, Sign: sign}, nil
	case "Y":
		return Axis{Index: 1, Sign: sign}, nil
	case "Z":
		return Axis{Index: 2, Sign: sign}, nil
	}
	return Axis{}, fmt.Errorf("mathutil: invalid axis %q", s)
}

// Vec returns the unit vector along the axis.
func (a Axis) Vec() Vec3 {
	var v Vec3
	v[a.Index] = a.Sign
	return v
}

// frame returns the basis [right, forward, up] as matrix columns.
func frame(forward, up Axis) (Mat3, error) {
	if forward.Index == up.Index {
		return Mat3{}, fmt.Errorf("mathutil: forward and up axes must differ")
	}
	f, u := forward.Vec(), up.Vec()
	return Mat3FromColumns(f.Cross(u), f, u), nil
}

// AxisConversion returns the rotation that maps the host frame (Y forward,
// Z up) onto the frame named by forward and up. With forward "Y" and up "Z"
// the result is the identity.
func AxisConversion(forward, up string) (Mat4, error) {
	srcF, _ := ParseAxis(sourceAxisForward)
	srcU, _ := ParseAxis(sourceAxisUp)
	dstF, err := ParseAxis(forward)
	if err != nil {
		return Mat4{}, err
	}
	dstU, err := ParseAxis(up)
	if err != nil {
		return Mat4{}, err
	}

	src, _ := frame(srcF, srcU)
	dst, err := frame(dstF, dstU)
	if err != nil {
		return Mat4{}, err
	}

	// Orthonormal bases: inverse is the transpose.
	return Mat3Mul(dst, src.Transpose()).To4x4(), nil
}
