package mathutil

import "math"

// AxisAngle returns the rotation by a radians about axis (need not be unit).
func AxisAngle(axis Vec3, a float64) Mat3 {
	k := axis.Normalize()
	c, s := math.Cos(a), math.Sin(a)
	t := 1 - c
	x, y, z := k[0], k[1], k[2]
	return Mat3{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c,
	}
}

func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }

func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }
