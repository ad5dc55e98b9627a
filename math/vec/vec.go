// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"github.com/chewxy/math32"
)

type Vec3 [3]float32

func (v Vec3) X() float32 { return v[0] }
func (v Vec3) Y() float32 { return v[1] }
func (v Vec3) Z() float32 { return v[2] }

// Length returns the length of the vector
func (v Vec3) Length() float32 {
	return math32.Sqrt(Dot(v, v))
}

// LengthSqr returns the squared length of the vector
func (v Vec3) LengthSqr() float32 {
	return Dot(v, v)
}

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return Vec3{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return Vec3{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// Scale returns the vector multiplied by the skalar s
func Scale(s float32, v Vec3) Vec3 {
	return Vec3{
		v[0] * s,
		v[1] * s,
		v[2] * s,
	}
}

// MA returns a + s*b
func MA(a Vec3, s float32, b Vec3) Vec3 {
	return Vec3{
		a[0] + s*b[0],
		a[1] + s*b[1],
		a[2] + s*b[2],
	}
}

// Neg returns -v
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Normalize returns the normalized vector
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Scale(1/l, v)
}

// Dot returns a dot b
func Dot(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns a cross b
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Lerp computes a weighted average between two points
func Lerp(a, b Vec3, frac float32) Vec3 {
	fi := 1 - frac
	return Vec3{
		fi*a[0] + frac*b[0],
		fi*a[1] + frac*b[1],
		fi*a[2] + frac*b[2],
	}
}

// Dist returns the distance between a and b
func Dist(a, b Vec3) float32 {
	return Sub(a, b).Length()
}

// Equal returns a == b
func Equal(a, b Vec3) bool {
	return a == b
}

// NearEqual reports whether all components differ by at most eps
func NearEqual(a, b Vec3, eps float32) bool {
	return math32.Abs(a[0]-b[0]) <= eps &&
		math32.Abs(a[1]-b[1]) <= eps &&
		math32.Abs(a[2]-b[2]) <= eps
}

// Min returns the componentwise minimum
func Min(a, b Vec3) Vec3 {
	return Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// Max returns the componentwise maximum
func Max(a, b Vec3) Vec3 {
	return Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// Barycentric interpolates a, b and c with the barycentric weights u and v
// of b and c.
func Barycentric(a, b, c Vec3, u, v float32) Vec3 {
	w := 1 - u - v
	return Vec3{
		w*a[0] + u*b[0] + v*c[0],
		w*a[1] + u*b[1] + v*c[1],
		w*a[2] + u*b[2] + v*c[2],
	}
}
