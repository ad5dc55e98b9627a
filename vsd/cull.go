// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"govsd/geom"
)

// CullBoxSingle reports whether b is outside one of planes. It tests the
// corner farthest along each plane normal, so a box overlapping the frustum
// is never culled.
func CullBoxSingle(b geom.AABB, planes []geom.Plane) bool {
	for i := range planes {
		p := &planes[i]
		n := p.Normal
		d := max(float32(n[0]*b.Mins[0]), float32(n[0]*b.Maxs[0])) +
			max(float32(n[1]*b.Mins[1]), float32(n[1]*b.Maxs[1])) +
			max(float32(n[2]*b.Mins[2]), float32(n[2]*b.Maxs[2])) +
			p.D
		if d <= 0 {
			return true
		}
	}
	return false
}

// CullSphereSingle reports whether s is outside one of planes.
func CullSphereSingle(s geom.Sphere, planes []geom.Plane) bool {
	for i := range planes {
		if planes[i].Dist(s.Center) <= -s.Radius {
			return true
		}
	}
	return false
}

func cullBox4(b *geom.AABB4, planes []geom.Plane) bool {
	for i := range planes {
		p := &planes[i]
		n := p.Normal
		d := max(float32(n[0]*b.Mins[0]), float32(n[0]*b.Maxs[0])) +
			max(float32(n[1]*b.Mins[1]), float32(n[1]*b.Maxs[1])) +
			max(float32(n[2]*b.Mins[2]), float32(n[2]*b.Maxs[2])) +
			p.D
		if d <= 0 {
			return true
		}
	}
	return false
}

// CullBoxGeneric sets culled[i] for every box outside one of planes. It is
// the reference for CullBoxSSE. len(culled) must be at least len(boxes).
func CullBoxGeneric(boxes []geom.AABB4, planes []geom.Plane, culled []bool) {
	culled = culled[:len(boxes)]
	for i := range boxes {
		culled[i] = cullBox4(&boxes[i], planes)
	}
}

// lanes is four boxes transposed to one array per axis and bound.
type lanes struct {
	minX, minY, minZ [4]float32
	maxX, maxY, maxZ [4]float32
}

func (l *lanes) load(b []geom.AABB4) {
	for j := 0; j < 4; j++ {
		l.minX[j] = b[j].Mins[0]
		l.minY[j] = b[j].Mins[1]
		l.minZ[j] = b[j].Mins[2]
		l.maxX[j] = b[j].Maxs[0]
		l.maxY[j] = b[j].Maxs[1]
		l.maxZ[j] = b[j].Maxs[2]
	}
}

// CullBoxSSE computes the same result as CullBoxGeneric four boxes at a
// time. Every plane is evaluated for all four lanes and the outside flags
// are or'ed. The tail that does not fill four lanes uses CullBoxGeneric.
func CullBoxSSE(boxes []geom.AABB4, planes []geom.Plane, culled []bool) {
	n := len(boxes) &^ 3
	var l lanes
	for i := 0; i < n; i += 4 {
		l.load(boxes[i : i+4 : i+4])
		var out [4]bool
		for pi := range planes {
			p := &planes[pi]
			nx, ny, nz, pd := p.Normal[0], p.Normal[1], p.Normal[2], p.D
			var d [4]float32
			for j := 0; j < 4; j++ {
				d[j] = max(float32(nx*l.minX[j]), float32(nx*l.maxX[j])) +
					max(float32(ny*l.minY[j]), float32(ny*l.maxY[j])) +
					max(float32(nz*l.minZ[j]), float32(nz*l.maxZ[j])) +
					pd
			}
			out[0] = out[0] || d[0] <= 0
			out[1] = out[1] || d[1] <= 0
			out[2] = out[2] || d[2] <= 0
			out[3] = out[3] || d[3] <= 0
		}
		copy(culled[i:i+4], out[:])
	}
	CullBoxGeneric(boxes[n:], planes, culled[n:])
}

// cornerIndex maps plane sign bits to the indices into AABB.Array of the
// corner farthest along the normal (first three) and the nearest corner.
var cornerIndex = func() (t [8][6]int) {
	for bits := 0; bits < 8; bits++ {
		for axis := 0; axis < 3; axis++ {
			if bits&(1<<axis) != 0 {
				t[bits][axis] = axis
				t[bits][3+axis] = 3 + axis
			} else {
				t[bits][axis] = 3 + axis
				t[bits][3+axis] = axis
			}
		}
	}
	return t
}()

// cullNode tests b against the first four planes still set in bits. Planes
// the box is completely inside of are cleared from bits so children skip
// them.
func cullNode(b geom.AABB, planes []geom.Plane, bits *uint8) bool {
	a := b.Array()
	for i := 0; i < 4 && i < len(planes); i++ {
		if *bits&(1<<i) == 0 {
			continue
		}
		p := &planes[i]
		idx := &cornerIndex[p.SignBits()]
		far := p.Normal[0]*a[idx[0]] + p.Normal[1]*a[idx[1]] + p.Normal[2]*a[idx[2]] + p.D
		if far <= 0 {
			return true
		}
		near := p.Normal[0]*a[idx[3]] + p.Normal[1]*a[idx[4]] + p.Normal[2]*a[idx[5]] + p.D
		if near >= 0 {
			*bits &^= 1 << i
		}
	}
	return false
}
