// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"math"

	"govsd/math/vec"
)

// AABB is an axis aligned bounding box. Mins <= Maxs componentwise.
type AABB struct {
	Mins vec.Vec3
	Maxs vec.Vec3
}

// EmptyAABB returns an inverted box that any AddPoint turns valid.
func EmptyAABB() AABB {
	return AABB{
		Mins: vec.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Maxs: vec.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

func BoxFromCenter(center, halfSize vec.Vec3) AABB {
	return AABB{
		Mins: vec.Sub(center, halfSize),
		Maxs: vec.Add(center, halfSize),
	}
}

func (b AABB) IsValid() bool {
	return b.Mins[0] <= b.Maxs[0] && b.Mins[1] <= b.Maxs[1] && b.Mins[2] <= b.Maxs[2]
}

func (b AABB) Center() vec.Vec3 {
	return vec.Scale(0.5, vec.Add(b.Mins, b.Maxs))
}

func (b AABB) HalfSize() vec.Vec3 {
	return vec.Scale(0.5, vec.Sub(b.Maxs, b.Mins))
}

// Corner returns one of the 8 corners, bit i of idx selects Maxs on axis i.
func (b AABB) Corner(idx int) vec.Vec3 {
	var c vec.Vec3
	for i := 0; i < 3; i++ {
		if idx&(1<<i) != 0 {
			c[i] = b.Maxs[i]
		} else {
			c[i] = b.Mins[i]
		}
	}
	return c
}

func (b *AABB) AddPoint(p vec.Vec3) {
	b.Mins = vec.Min(b.Mins, p)
	b.Maxs = vec.Max(b.Maxs, p)
}

func (b *AABB) AddAABB(o AABB) {
	b.Mins = vec.Min(b.Mins, o.Mins)
	b.Maxs = vec.Max(b.Maxs, o.Maxs)
}

func (b AABB) Contains(p vec.Vec3) bool {
	return p[0] >= b.Mins[0] && p[0] <= b.Maxs[0] &&
		p[1] >= b.Mins[1] && p[1] <= b.Maxs[1] &&
		p[2] >= b.Mins[2] && p[2] <= b.Maxs[2]
}

func (b AABB) Overlaps(o AABB) bool {
	if b.Mins[0] > o.Maxs[0] ||
		b.Mins[1] > o.Maxs[1] ||
		b.Mins[2] > o.Maxs[2] ||
		b.Maxs[0] < o.Mins[0] ||
		b.Maxs[1] < o.Mins[1] ||
		b.Maxs[2] < o.Mins[2] {
		return false
	}
	return true
}

// Array returns mins followed by maxs, the layout the corner tables index.
func (b AABB) Array() [6]float32 {
	return [6]float32{b.Mins[0], b.Mins[1], b.Mins[2], b.Maxs[0], b.Maxs[1], b.Maxs[2]}
}

// AABB4 is the padded layout used by the 4-wide culling path. The fourth
// component is padding and always 0.
type AABB4 struct {
	Mins [4]float32
	Maxs [4]float32
}

func (b AABB) To4() AABB4 {
	return AABB4{
		Mins: [4]float32{b.Mins[0], b.Mins[1], b.Mins[2], 0},
		Maxs: [4]float32{b.Maxs[0], b.Maxs[1], b.Maxs[2], 0},
	}
}

func (b AABB4) AABB() AABB {
	return AABB{
		Mins: vec.Vec3{b.Mins[0], b.Mins[1], b.Mins[2]},
		Maxs: vec.Vec3{b.Maxs[0], b.Maxs[1], b.Maxs[2]},
	}
}

type Sphere struct {
	Center vec.Vec3
	Radius float32
}

// AABB returns the box enclosing the sphere.
func (s Sphere) AABB() AABB {
	r := vec.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{
		Mins: vec.Sub(s.Center, r),
		Maxs: vec.Add(s.Center, r),
	}
}
